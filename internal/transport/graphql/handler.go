package graphql

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"go.uber.org/zap"

	"go-social-api/internal/apperr"
)

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler POST /graphql。
// 错误按老契约铺平：errors[].code / errors[].data，而不是只塞 extensions
func Handler(schema graphql.Schema, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"message": "Invalid GraphQL request body."}}})
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			OperationName:  req.OperationName,
			VariableValues: req.Variables,
			Context:        c.Request.Context(),
		})

		out := gin.H{"data": result.Data}
		if len(result.Errors) > 0 {
			errs := make([]map[string]interface{}, 0, len(result.Errors))
			for _, fe := range result.Errors {
				entry := map[string]interface{}{"message": fe.Message}
				if ae := unwrapAppError(fe); ae != nil {
					entry["code"] = ae.Code
					if len(ae.Data) > 0 {
						entry["data"] = ae.Data
					}
					if ae.Code >= 500 {
						l.Error("graphql resolver", zap.String("message", fe.Message), zap.Error(ae.Err))
					}
				}
				errs = append(errs, entry)
			}
			out["errors"] = errs
		}
		c.JSON(http.StatusOK, out)
	}
}

// unwrapAppError 往里剥 gqlerrors 的包装，找业务错误
func unwrapAppError(err error) *apperr.E {
	for err != nil {
		var ae *apperr.E
		if errors.As(err, &ae) {
			return ae
		}
		switch v := err.(type) {
		case gqlerrors.FormattedError:
			err = v.OriginalError()
		case *gqlerrors.Error:
			err = v.OriginalError
		default:
			return nil
		}
	}
	return nil
}
