package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Image references an uploaded asset.
type Image struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// Post is a user-owned piece of content. UserID is the owner and is fixed at
// creation.
type Post struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Images      []Image   `json:"images"`
	UserID      uuid.UUID `json:"user"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreatePostParams is the body of POST /api/posts. The owner never comes
// from the body.
type CreatePostParams struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Images      []Image  `json:"images,omitempty"`
}

// Validate trims the title and checks required fields.
func (p *CreatePostParams) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" || p.Description == "" || p.Tags == nil {
		return NewValidationError("Title, Description, and Tags are required fields.")
	}
	if p.Images == nil {
		p.Images = []Image{}
	}
	return validateImages(p.Images)
}

// UpdatePostParams is the body of PUT /api/posts/{id}. Nil means unchanged.
type UpdatePostParams struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Images      []Image  `json:"images,omitempty"`
}

// IsEmpty reports whether no field was provided.
func (p UpdatePostParams) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Tags == nil && p.Images == nil
}

// Validate applies the same field rules as creation to the provided fields.
func (p *UpdatePostParams) Validate() error {
	if p.IsEmpty() {
		return NewValidationError("No fields provided for update.")
	}
	if p.Title != nil {
		trimmed := strings.TrimSpace(*p.Title)
		if trimmed == "" {
			return NewValidationError("Please Enter Post Title")
		}
		p.Title = &trimmed
	}
	if p.Description != nil && *p.Description == "" {
		return NewValidationError("Please Enter Post Description")
	}
	return validateImages(p.Images)
}

func validateImages(images []Image) error {
	for _, img := range images {
		if img.PublicID == "" || img.URL == "" {
			return NewValidationError("Each image requires public_id and url.")
		}
	}
	return nil
}

// StatusSuccess is the status value of successful post responses.
const StatusSuccess = "success"

// PostCreatedResponse is returned with 201 by POST /api/posts.
type PostCreatedResponse struct {
	Status  string    `json:"status"`
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
}

// PostUpdatedResponse is returned by PUT /api/posts/{id}.
type PostUpdatedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Post    *Post  `json:"post"`
}

// PostDeletedResponse is returned by DELETE /api/posts/{id}.
type PostDeletedResponse struct {
	Status    string    `json:"status"`
	DeletedID uuid.UUID `json:"deleted_id"`
	Message   string    `json:"message"`
}
