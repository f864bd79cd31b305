package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultTitle = "Untitled"

// Project is one portfolio item shown on the public site.
// It is storage-agnostic and used across repository, service and HTTP layers.
type Project struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Src                string    `json:"src"`
	CloudinaryPublicID *string   `json:"cloudinary_public_id"`
	WhatsApp           *string   `json:"whatsapp"`
	IsPublished        bool      `json:"is_published"`
	SortOrder          float64   `json:"sort_order"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Extra keeps fields merged in by updates that have no typed home,
	// so they survive a round trip through any store.
	Extra map[string]json.RawMessage `json:"-"`
}

// CreateInput carries the client-supplied fields of a new project.
type CreateInput struct {
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	Src                string  `json:"src"`
	CloudinaryPublicID string  `json:"cloudinary_public_id"`
	WhatsApp           string  `json:"whatsapp"`
	IsPublished        bool    `json:"is_published"`
	SortOrder          float64 `json:"sort_order"`
}

// Patch is a shallow update: every key present overwrites the stored value.
type Patch map[string]json.RawMessage

// serverOwned fields are never taken from a patch.
var serverOwned = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

var typedFields = []string{
	"id", "title", "description", "src", "cloudinary_public_id",
	"whatsapp", "is_published", "sort_order", "created_at", "updated_at",
}

// NewProject synthesizes a full record from client input, applying defaults.
func NewProject(in CreateInput, now time.Time) Project {
	title := in.Title
	if title == "" {
		title = DefaultTitle
	}
	now = now.UTC()
	return Project{
		ID:                 uuid.NewString(),
		Title:              title,
		Description:        in.Description,
		Src:                in.Src,
		CloudinaryPublicID: optional(in.CloudinaryPublicID),
		WhatsApp:           optional(in.WhatsApp),
		IsPublished:        in.IsPublished,
		SortOrder:          in.SortOrder,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Merge returns p with patch applied over it and UpdatedAt set to now.
func (p Project) Merge(patch Patch, now time.Time) (Project, error) {
	base, err := json.Marshal(p)
	if err != nil {
		return Project{}, err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(base, &doc); err != nil {
		return Project{}, err
	}
	for key, value := range patch {
		if serverOwned[key] {
			continue
		}
		doc[key] = value
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return Project{}, err
	}

	var out Project
	if err := json.Unmarshal(merged, &out); err != nil {
		return Project{}, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	out.UpdatedAt = now.UTC()
	return out, nil
}

// MediaPublicID returns the remote media identifier, or "" when there is none.
func (p Project) MediaPublicID() string {
	if p.CloudinaryPublicID == nil {
		return ""
	}
	return strings.TrimSpace(*p.CloudinaryPublicID)
}

// projectFields has Project's layout without its JSON methods.
type projectFields Project

func (p Project) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(projectFields(p))
	if err != nil || len(p.Extra) == 0 {
		return known, err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(known, &doc); err != nil {
		return nil, err
	}
	for key, value := range p.Extra {
		if _, ok := doc[key]; !ok {
			doc[key] = value
		}
	}
	return json.Marshal(doc)
}

func (p *Project) UnmarshalJSON(data []byte) error {
	var fields projectFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	for _, key := range typedFields {
		delete(doc, key)
	}

	*p = Project(fields)
	p.Extra = nil
	if len(doc) > 0 {
		p.Extra = doc
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
