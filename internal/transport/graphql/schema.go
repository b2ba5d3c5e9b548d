package graphql

import (
	"time"

	"github.com/graphql-go/graphql"

	"go-social-api/internal/apperr"
	"go-social-api/internal/core/auth"
	"go-social-api/internal/domain"
	"go-social-api/internal/service"
	"go-social-api/internal/storage"
)

// 和 REST 共用一个 service；resolver 只做参数拆包和守卫

func requireAuth(p graphql.ResolveParams) (*auth.Claims, error) {
	if c := auth.IdentityFrom(p.Context); c != nil {
		return c, nil
	}
	return nil, apperr.Unauthorized("User not authenticated!")
}

func userFrom(src any) *domain.User {
	switch v := src.(type) {
	case *domain.User:
		return v
	case domain.User:
		return &v
	}
	return nil
}

func postFrom(src any) *domain.Post {
	switch v := src.(type) {
	case *domain.Post:
		return v
	case domain.Post:
		return &v
	}
	return nil
}

func str(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// NewSchema 组装整棵 schema；类型相互引用，先声明后补字段
func NewSchema(svc *service.Service) (graphql.Schema, error) {
	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"_id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return userFrom(p.Source).ID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return userFrom(p.Source).Name, nil
				},
			},
			"email": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return userFrom(p.Source).Email, nil
				},
			},
			"status": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return userFrom(p.Source).Status, nil
				},
			},
		},
	})

	postType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.Fields{
			"_id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return postFrom(p.Source).ID, nil
				},
			},
			"title": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return postFrom(p.Source).Title, nil
				},
			},
			"content": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return postFrom(p.Source).Content, nil
				},
			},
			"imageUrl": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return postFrom(p.Source).ImageURL, nil
				},
			},
			"creator": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return postFrom(p.Source).Creator, nil
				},
			},
			// 时间戳统一 RFC3339 文本
			"createdAt": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return postFrom(p.Source).CreatedAt.Format(time.RFC3339), nil
				},
			},
			"updatedAt": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return postFrom(p.Source).UpdatedAt.Format(time.RFC3339), nil
				},
			},
		},
	})

	userType.AddFieldConfig("posts", &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(postType)),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return userFrom(p.Source).Posts, nil
		},
	})

	authDataType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthData",
		Fields: graphql.Fields{
			"token":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"userId": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	postDataType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PostData",
		Fields: graphql.Fields{
			"posts":      &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(postType)))},
			"totalPosts": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	userInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UserInputData",
		Fields: graphql.InputObjectConfigFieldMap{
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"name":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	postInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PostInputData",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"content":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"imageUrl": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQuery",
		Fields: graphql.Fields{
			"posts": &graphql.Field{
				Type: graphql.NewNonNull(postDataType),
				Args: graphql.FieldConfigArgument{
					"page": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := requireAuth(p); err != nil {
						return nil, err
					}
					page, _ := p.Args["page"].(int)
					posts, total, err := svc.ListPosts(p.Context, page)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{"posts": posts, "totalPosts": total}, nil
				},
			},
			"post": &graphql.Field{
				Type: graphql.NewNonNull(postType),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, err := requireAuth(p); err != nil {
						return nil, err
					}
					id, _ := p.Args["id"].(string)
					return svc.GetPost(p.Context, id)
				},
			},
			"user": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims, err := requireAuth(p)
					if err != nil {
						return nil, err
					}
					return svc.CurrentUser(p.Context, claims.UID)
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootMutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"userInput": &graphql.ArgumentConfig{Type: graphql.NewNonNull(userInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					in, _ := p.Args["userInput"].(map[string]interface{})
					return svc.Signup(p.Context, str(in, "email"), str(in, "name"), str(in, "password"))
				},
			},
			"login": &graphql.Field{
				Type: graphql.NewNonNull(authDataType),
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					email, _ := p.Args["email"].(string)
					password, _ := p.Args["password"].(string)
					token, u, err := svc.Login(p.Context, email, password)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{"token": token, "userId": u.ID}, nil
				},
			},
			"createPost": &graphql.Field{
				Type: graphql.NewNonNull(postType),
				Args: graphql.FieldConfigArgument{
					"postInput": &graphql.ArgumentConfig{Type: graphql.NewNonNull(postInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims, err := requireAuth(p)
					if err != nil {
						return nil, err
					}
					in, _ := p.Args["postInput"].(map[string]interface{})
					post, _, err := svc.CreatePost(p.Context, claims.UID,
						str(in, "title"), str(in, "content"),
						storage.NormalizePath(str(in, "imageUrl")))
					return post, err
				},
			},
			"updatePost": &graphql.Field{
				Type: graphql.NewNonNull(postType),
				Args: graphql.FieldConfigArgument{
					"id":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"postInput": &graphql.ArgumentConfig{Type: graphql.NewNonNull(postInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims, err := requireAuth(p)
					if err != nil {
						return nil, err
					}
					id, _ := p.Args["id"].(string)
					in, _ := p.Args["postInput"].(map[string]interface{})
					imageURL := storage.NormalizePath(str(in, "imageUrl"))
					// 前端拿不到新图时会原样传 "undefined"，当成不换图
					if imageURL == "undefined" {
						imageURL = ""
					}
					return svc.UpdatePost(p.Context, claims.UID, id,
						str(in, "title"), str(in, "content"), imageURL)
				},
			},
			"deletePost": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims, err := requireAuth(p)
					if err != nil {
						return nil, err
					}
					id, _ := p.Args["id"].(string)
					if err := svc.DeletePost(p.Context, claims.UID, id); err != nil {
						return false, err
					}
					return true, nil
				},
			},
			"updateStatus": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"status": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					claims, err := requireAuth(p)
					if err != nil {
						return nil, err
					}
					status, _ := p.Args["status"].(string)
					return svc.UpdateStatus(p.Context, claims.UID, status)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}
