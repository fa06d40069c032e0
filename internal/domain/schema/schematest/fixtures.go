// Package schematest provides shared record shapes for tests.
package schematest

import "github.com/kailas-cloud/restql/internal/domain/schema"

// Tag is a flat collection element.
func Tag() *schema.Type {
	return schema.NewType("Tag").
		String("Label").
		Number("Weight")
}

// Address is a nested object.
func Address() *schema.Type {
	return schema.NewType("Address").
		String("Street").
		String("City").
		Number("Zip")
}

// Comment nests two further collection levels: replies and their reactions.
func Comment() *schema.Type {
	reaction := schema.NewType("Reaction").String("Emoji")
	reply := schema.NewType("Reply").
		String("Text").
		Collection("Reactions", reaction)
	return schema.NewType("Comment").
		String("Body").
		Collection("Replies", reply)
}

// User is the root fixture type covering every kind.
func User() *schema.Type {
	return schema.NewType("User").
		WithIndex("users").
		String("FirstName").
		String("LastName").
		String("Email", schema.WithKeyword("email.keyword")).
		Number("Age").
		Enum("Status").
		Bool("Active").
		Time("CreatedAt").
		Object("Address", Address()).
		Collection("Tags", Tag()).
		Collection("Comments", Comment())
}

// Article is the minimal search fixture: a title and labelled tags.
func Article() *schema.Type {
	return schema.NewType("Article").
		String("Title").
		Collection("Tags", schema.NewType("ArticleTag").String("Label"))
}

// Registry returns a registry holding User and Article.
func Registry() *schema.Registry {
	return schema.NewRegistry().MustRegister(User(), Article())
}
