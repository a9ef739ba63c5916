// Package validate checks entity creation payloads before they reach the
// store. Partial updates are deliberately not validated; patches can only
// touch fields the patch types expose.
package validate

import (
	"fmt"
	"strings"

	"github.com/dawntoweb/agency/internal/store"
)

// Error describes a rejected payload. The route layer maps it to a client
// error, never a server error.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func required(field, value string) *Error {
	if strings.TrimSpace(value) == "" {
		return &Error{Field: field, Reason: "is required"}
	}
	return nil
}

func oneOf(field, value string, allowed ...string) *Error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &Error{Field: field, Reason: fmt.Sprintf("must be one of %s", strings.Join(allowed, ", "))}
}

func email(field, value string) *Error {
	if !strings.Contains(value, "@") {
		return &Error{Field: field, Reason: "must be a valid email address"}
	}
	return nil
}

func User(in store.NewUser) error {
	for _, e := range []*Error{
		required("username", in.Username),
		required("password", in.Password),
		required("email", in.Email),
	} {
		if e != nil {
			return e
		}
	}
	if e := email("email", in.Email); e != nil {
		return e
	}
	return nil
}

func Lead(in store.NewLead) error {
	for _, e := range []*Error{
		required("name", in.Name),
		required("email", in.Email),
		required("message", in.Message),
	} {
		if e != nil {
			return e
		}
	}
	if e := email("email", in.Email); e != nil {
		return e
	}
	if e := oneOf("status", in.Status,
		store.LeadStatusNew, store.LeadStatusContacted, store.LeadStatusQualified,
		store.LeadStatusConverted, store.LeadStatusClosed); e != nil {
		return e
	}
	if e := oneOf("priority", in.Priority, "low", "medium", "high"); e != nil {
		return e
	}
	return nil
}

func BlogPost(in store.NewBlogPost) error {
	for _, e := range []*Error{
		required("title", in.Title),
		required("slug", in.Slug),
		required("content", in.Content),
		required("authorId", in.AuthorID),
	} {
		if e != nil {
			return e
		}
	}
	if e := oneOf("status", in.Status, store.PostStatusDraft, store.PostStatusPublished); e != nil {
		return e
	}
	return nil
}

func Project(in store.NewProject) error {
	for _, e := range []*Error{
		required("title", in.Title),
		required("description", in.Description),
		required("category", in.Category),
		required("image", in.Image),
	} {
		if e != nil {
			return e
		}
	}
	return nil
}

func AiAgent(in store.NewAiAgent) error {
	for _, e := range []*Error{
		required("name", in.Name),
		required("description", in.Description),
		required("icon", in.Icon),
		required("price", in.Price),
		required("category", in.Category),
	} {
		if e != nil {
			return e
		}
	}
	if e := oneOf("priceType", in.PriceType, "monthly", "one-time", "custom"); e != nil {
		return e
	}
	return nil
}
