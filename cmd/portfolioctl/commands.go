package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/natah-genesis/portfolio-api/internal/uploader"
)

type globalFlags struct {
	api      string
	adminKey string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "portfolioctl",
		Short:         "Manage portfolio projects and media",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.api, "api", envOr("PORTFOLIO_API", "http://localhost:3000"), "portfolio API base URL")
	root.PersistentFlags().StringVar(&g.adminKey, "admin-key", os.Getenv("ADMIN_API_KEY"), "admin key sent as x-admin-key")

	root.AddCommand(
		newHealthCmd(g),
		newListCmd(g),
		newPublishCmd(g),
		newUpdateCmd(g),
		newDeleteCmd(g),
	)
	return root
}

func (g *globalFlags) client() *uploader.Client {
	return uploader.NewClient(g.api, g.adminKey)
}

func newHealthCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server health and configuration presence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := g.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), h)
		},
	}
}

func newListCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := g.client().List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), items)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tPUBLISHED\tORDER\tSRC")
			for _, p := range items {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%g\t%s\n", p.ID, p.Title, p.IsPublished, p.SortOrder, p.Src)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func newPublishCmd(g *globalFlags) *cobra.Command {
	var (
		in   uploader.PublishInput
		path string
	)
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload a file (or use --src) and create a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path != "" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()

				info, err := f.Stat()
				if err != nil {
					return err
				}
				in.File = &uploader.File{
					Name:        filepath.Base(path),
					ContentType: contentType(path),
					Size:        info.Size(),
					Reader:      f,
				}
			}

			p, err := g.client().Publish(cmd.Context(), in, progressPrinter(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "project title (required)")
	f.StringVar(&in.Description, "description", "", "project description")
	f.StringVar(&in.Folder, "folder", "projects", "Cloudinary folder")
	f.StringVar(&path, "file", "", "local media file to upload")
	f.StringVar(&in.Src, "src", "", "existing media URL, used when --file is not given")
	f.StringVar(&in.WhatsApp, "whatsapp", "", "contact tag: business, portfolio or general")
	f.BoolVar(&in.IsPublished, "published", false, "publish immediately")
	f.Float64Var(&in.SortOrder, "sort-order", 0, "display order, higher first")
	return cmd
}

func newUpdateCmd(g *globalFlags) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Patch fields of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			p, err := g.client().Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value; value is parsed as JSON when it can be")
	return cmd
}

func newDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and its remote media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.client().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

// parseAssignments turns ["is_published=true", "title=Reel"] into a patch.
func parseAssignments(sets []string) (map[string]any, error) {
	patch := make(map[string]any, len(sets))
	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, want field=value", s)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		patch[key] = v
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("nothing to update, pass at least one --set")
	}
	return patch, nil
}

// progressPrinter writes upload percentages at most a few times a second.
func progressPrinter(w io.Writer) uploader.ProgressFunc {
	limiter := rate.NewLimiter(rate.Every(250*time.Millisecond), 1)
	last := -1
	return func(f float64) {
		pct := int(f * 100)
		if pct == last || (pct < 100 && !limiter.Allow()) {
			return
		}
		last = pct
		fmt.Fprintf(w, "uploading... %d%%\n", pct)
	}
}

// videoTypes covers extensions missing from minimal mime tables.
var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
}

func contentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := videoTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
