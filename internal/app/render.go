package app

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/GoArmGo/CuratAI/internal/domain"
)

const timeLayout = "2006-01-02 15:04"

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderProjects(out io.Writer, projects []domain.Project, totalImages int) {
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects yet.")
		return
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "ID\tNAME\tIMAGES\tCREATED")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID, p.ProjectName, p.ImageCount, formatTime(p.CreatedAt.Time))
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "%d projects, %d images\n", len(projects), totalImages)
}

func renderProject(out io.Writer, p *domain.Project) {
	fmt.Fprintf(out, "%s (%s)\n", p.ProjectName, p.ID)
	fmt.Fprintf(out, "  images:  %d\n", p.ImageCount)
	fmt.Fprintf(out, "  created: %s\n", formatTime(p.CreatedAt.Time))
	if p.UpdatedAt != nil {
		fmt.Fprintf(out, "  updated: %s\n", formatTime(p.UpdatedAt.Time))
	}
}

func renderImages(out io.Writer, images []domain.Image) {
	if len(images) == 0 {
		fmt.Fprintln(out, "No images.")
		return
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "ID\tPERSON\tURL")
	for _, img := range images {
		id := img.ID
		if img.Local {
			id += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", id, orDash(img.PersonName), img.ImageURL)
	}
	_ = tw.Flush()
}

func renderAlbums(out io.Writer, albums []domain.Album) {
	if len(albums) == 0 {
		fmt.Fprintln(out, "No albums yet. Create one from a face.")
		return
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "ID\tPERSON\tIMAGES\tCREATED")
	for _, al := range albums {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", al.ID, al.PersonName, len(al.ImageGroup), formatTime(al.CreatedAt.Time))
	}
	_ = tw.Flush()
}

func renderLinks(out io.Writer, links []string) {
	if len(links) == 0 {
		fmt.Fprintln(out, "No images in this album.")
		return
	}
	for i, l := range links {
		fmt.Fprintf(out, "%3d  %s\n", i, l)
	}
}

// renderMessages печатает ленту галереи: загрузки, запросы и ответы поиска.
func renderMessages(out io.Writer, messages []domain.Message) {
	for _, m := range messages {
		switch m.Type {
		case domain.MessageUser:
			fmt.Fprintf(out, "> %s\n", m.Content)
		case domain.MessageAI:
			if m.IsLoading {
				fmt.Fprintln(out, "… searching")
				continue
			}
			fmt.Fprintln(out, m.Content)
			renderImages(out, m.Images)
		default:
			fmt.Fprintf(out, "[%s] %s\n", m.Timestamp.Local().Format(timeLayout), orDash(m.Content))
			renderImages(out, m.Images)
		}
	}
}

func renderFieldErrors(out io.Writer, fe domain.FieldErrors) {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "general" {
			fmt.Fprintf(out, "  %s\n", fe[k])
			continue
		}
		fmt.Fprintf(out, "  %s: %s\n", strings.ReplaceAll(k, "_", " "), fe[k])
	}
}

// progressPrinter печатает процент загрузки в одну строку.
func progressPrinter(out io.Writer) func(int) {
	return func(p int) {
		fmt.Fprintf(out, "\rUploading... %3d%%", p)
		if p >= 100 {
			fmt.Fprintln(out)
		}
	}
}
