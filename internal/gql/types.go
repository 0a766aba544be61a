package gql

import (
	"patisson-users/internal/models"
	"patisson-users/internal/repository"

	"github.com/graphql-go/graphql"
)

var libraryStatusEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "LibraryStatus",
	Values: graphql.EnumValueConfigMap{
		models.LibraryStatusPlanning.String(): &graphql.EnumValueConfig{Value: models.LibraryStatusPlanning},
		models.LibraryStatusReading.String():  &graphql.EnumValueConfig{Value: models.LibraryStatusReading},
		models.LibraryStatusFinished.String(): &graphql.EnumValueConfig{Value: models.LibraryStatusFinished},
	},
})

// Fields resolve through the json tags of the models.
var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"username":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"first_name": &graphql.Field{Type: graphql.String},
		"last_name":  &graphql.Field{Type: graphql.String},
		"avatar":     &graphql.Field{Type: graphql.String},
		"about":      &graphql.Field{Type: graphql.String},
		"role":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"is_banned":  &graphql.Field{Type: graphql.Boolean},
	},
})

var libraryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Library",
	Fields: graphql.Fields{
		"id":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"book_id": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"user_id": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"status":  &graphql.Field{Type: graphql.NewNonNull(libraryStatusEnum)},
	},
})

func listArg(of graphql.Input) *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(of))}
}

func pageArgs(args graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	args["offset"] = &graphql.ArgumentConfig{Type: graphql.Int}
	args["limit"] = &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: repository.DefaultListLimit}
	return args
}

func userArgs() graphql.FieldConfigArgument {
	return pageArgs(graphql.FieldConfigArgument{
		"ids":         listArg(graphql.String),
		"usernames":   listArg(graphql.String),
		"first_names": listArg(graphql.String),
		"last_names":  listArg(graphql.String),
		"roles":       listArg(graphql.String),
		"is_banned":   &graphql.ArgumentConfig{Type: graphql.Boolean},
	})
}

func libraryArgs() graphql.FieldConfigArgument {
	return pageArgs(graphql.FieldConfigArgument{
		"ids":      listArg(graphql.String),
		"user_ids": listArg(graphql.String),
		"book_ids": listArg(graphql.String),
		"statuses": listArg(libraryStatusEnum),
	})
}

func stringList(args map[string]any, name string) []string {
	raw, ok := args[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func page(args map[string]any) repository.Page {
	var p repository.Page
	if v, ok := args["offset"].(int); ok {
		p.Offset = v
	}
	if v, ok := args["limit"].(int); ok {
		p.Limit = v
	}
	return p
}
