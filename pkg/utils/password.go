package utils

import "golang.org/x/crypto/bcrypt"

// HashCost bcrypt 成本因子，签发侧和校验侧必须一致
const HashCost = 12

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), HashCost)
	return string(b), err
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
