package uploader

import (
	"context"
	"strings"

	"github.com/natah-genesis/portfolio-api/internal/projects/domain"
)

// PublishInput describes a new portfolio item. Either File is uploaded first,
// or Src points at media that is already hosted.
type PublishInput struct {
	Title       string
	Description string
	Folder      string
	Src         string
	File        *File
	WhatsApp    string
	IsPublished bool
	SortOrder   float64
}

// Publish runs sign, direct upload and create in order. Nothing is retried;
// a failed step stops the sequence.
func (c *Client) Publish(ctx context.Context, in PublishInput, progress ProgressFunc) (domain.Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Project{}, &ValidationError{Field: "title", Msg: "title is required"}
	}
	if in.File == nil && strings.TrimSpace(in.Src) == "" {
		return domain.Project{}, &ValidationError{Field: "src", Msg: "choose a file or enter a media URL"}
	}

	src := strings.TrimSpace(in.Src)
	var publicID string

	if in.File != nil {
		sig, err := c.Sign(ctx, in.Folder)
		if err != nil {
			return domain.Project{}, err
		}
		res, err := c.Upload(ctx, sig, *in.File, in.Folder, progress)
		if err != nil {
			return domain.Project{}, err
		}
		src = res.SecureURL
		publicID = res.PublicID
	}

	if src == "" {
		return domain.Project{}, &ValidationError{Field: "src", Msg: "upload did not return a media URL"}
	}

	return c.Create(ctx, domain.CreateInput{
		Title:              title,
		Description:        in.Description,
		Src:                src,
		CloudinaryPublicID: publicID,
		WhatsApp:           in.WhatsApp,
		IsPublished:        in.IsPublished,
		SortOrder:          in.SortOrder,
	})
}
