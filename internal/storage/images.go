package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"go-social-api/pkg/utils"
)

// Images 管理上传目录里的帖子配图
type Images struct {
	Dir string
	log *zap.Logger
}

func NewImages(dir string, l *zap.Logger) (*Images, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Images{Dir: dir, log: l}, nil
}

var allowedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Save 落盘并返回对外引用路径（uploads/xxx.png，统一正斜杠）
func (s *Images) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	name := utils.NewID() + ext
	dst := filepath.Join(s.Dir, name)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return NormalizePath(filepath.Join(s.Dir, name)), nil
}

// Remove 尽力删除，失败只记日志：图片残留不影响主流程
func (s *Images) Remove(ref string) {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return
	}
	clean := filepath.Clean(ref)
	if !strings.HasPrefix(clean, filepath.Clean(s.Dir)) {
		s.log.Warn("refusing to remove file outside upload dir", zap.String("ref", ref))
		return
	}
	if err := os.Remove(clean); err != nil && !os.IsNotExist(err) {
		s.log.Warn("remove image", zap.String("ref", ref), zap.Error(err))
	}
}

// NormalizePath 反斜杠全部换成正斜杠（Windows 客户端传上来的路径）
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
