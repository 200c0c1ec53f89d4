package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
	"github.com/GoArmGo/CuratAI/internal/messaging/payloads"
	"github.com/GoArmGo/CuratAI/internal/usecase"
	"github.com/GoArmGo/CuratAI/internal/view"
)

const usage = `usage: curatai [-mode cli|worker] <command> [flags] [args]

commands:
  login    -email E -password P
  signup   -username U -email E -password P -confirm P
  google   [-signup]
  logout
  whoami
  projects [list] [-sort recent|name|images] [-filter TEXT]
  projects create NAME
  projects delete ID
  project  ID
  images   list PROJECT
  images   upload [-enqueue] PROJECT FILE.zip
  images   delete PROJECT IMAGE
  images   download [-dir DIR] PROJECT IMAGE
  images   search PROJECT QUERY...
  images   voice PROJECT
  albums   list PROJECT
  albums   show PROJECT ALBUM
  albums   delete PROJECT ALBUM
  albums   create [-zoom Z] [-x DX] [-y DY] PROJECT IMAGE PERSON
  albums   export [-dir DIR | -s3] ALBUM
  shell
`

// errUsage возвращается при неверных аргументах команды.
var errUsage = errors.New("invalid arguments")

func (a *App) runCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.runShell(ctx)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "signup":
		return a.cmdSignup(ctx, rest)
	case "google":
		return a.cmdGoogle(ctx, rest)
	case "logout":
		return a.cmdLogout(ctx)
	case "whoami":
		return a.cmdWhoami(ctx)
	case "projects":
		return a.cmdProjects(ctx, rest)
	case "project":
		return a.cmdProject(ctx, rest)
	case "images":
		return a.cmdImages(ctx, rest)
	case "albums":
		return a.cmdAlbums(ctx, rest)
	case "shell":
		return a.runShell(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(a.Out, usage)
		return nil
	default:
		fmt.Fprint(a.Out, usage)
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Out)
	return fs
}

func needArgs(fs *flag.FlagSet, n int, what string) error {
	if fs.NArg() < n {
		return fmt.Errorf("%s: expected %s: %w", fs.Name(), what, errUsage)
	}
	return nil
}

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	form := view.NewLoginForm(a.Auth)
	fs.StringVar(&form.Email, "email", "", "account email")
	fs.StringVar(&form.Password, "password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !form.Submit(ctx) {
		return a.formFailed("Login failed", form.Notice, form.Errors)
	}
	return a.afterLogin(ctx)
}

func (a *App) cmdSignup(ctx context.Context, args []string) error {
	fs := a.flagSet("signup")
	form := view.NewSignupForm(a.Auth)
	fs.StringVar(&form.Username, "username", "", "user name")
	fs.StringVar(&form.Email, "email", "", "account email")
	fs.StringVar(&form.Password, "password", "", "password")
	fs.StringVar(&form.ConfirmPassword, "confirm", "", "password confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !form.Submit(ctx) {
		return a.formFailed("Signup failed", "", form.Errors)
	}
	fmt.Fprintln(a.Out, form.Success)
	return nil
}

func (a *App) cmdGoogle(ctx context.Context, args []string) error {
	fs := a.flagSet("google")
	signup := fs.Bool("signup", false, "register a new account with Google")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.Google == nil {
		return fmt.Errorf("google sign-in needs VITE_GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET: %w", domain.ErrUnsupported)
	}

	token, err := a.Google.IDToken(ctx)
	if err != nil {
		return fmt.Errorf("google sign-in: %w", err)
	}

	if *signup {
		form := view.NewSignupForm(a.Auth)
		if !form.Google(ctx, token) {
			return a.formFailed("Google Signup failed", "", form.Errors)
		}
		fmt.Fprintln(a.Out, form.Success)
		return nil
	}

	form := view.NewLoginForm(a.Auth)
	if !form.Google(ctx, token) {
		return a.formFailed("Google Login failed", form.Notice, form.Errors)
	}
	return a.afterLogin(ctx)
}

func (a *App) afterLogin(ctx context.Context) error {
	user, err := a.Auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Logged in as %s <%s>\n", orDash(user.Username), user.Email)
	return nil
}

// formFailed печатает ошибки формы и возвращает ошибку для кода выхода.
func (a *App) formFailed(title, notice string, fe domain.FieldErrors) error {
	fmt.Fprintln(a.Out, title)
	if notice != "" {
		fmt.Fprintf(a.Out, "  %s\n", notice)
	}
	renderFieldErrors(a.Out, fe)
	if len(fe) > 0 {
		return fe
	}
	return errors.New(strings.ToLower(title))
}

func (a *App) cmdLogout(ctx context.Context) error {
	if err := a.Auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "Logged out successfully")
	return nil
}

func (a *App) cmdWhoami(ctx context.Context) error {
	user, err := a.Auth.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("whoami: %w", err)
	}
	fmt.Fprintf(a.Out, "%s\t%s\t%s\n", user.ID, orDash(user.Username), user.Email)
	return nil
}

func (a *App) cmdProjects(ctx context.Context, args []string) error {
	userID, err := a.userID(ctx)
	if err != nil {
		return err
	}
	page := view.NewProjectsPage(a.API.Projects(), a.Notifier, a.Logger, userID)

	sub := "list"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list":
		fs := a.flagSet("projects list")
		sortBy := fs.String("sort", string(view.SortRecent), "recent, name or images")
		filter := fs.String("filter", "", "show projects whose name contains TEXT")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := page.Load(ctx); err != nil {
			return err
		}
		page.SetSort(view.ParseSortKey(*sortBy))
		page.SetQuery(*filter)
		renderProjects(a.Out, page.Visible(), page.TotalImages())
		return nil

	case "create":
		name := strings.Join(args, " ")
		if err := page.Create(ctx, name); err != nil {
			return err
		}
		for _, p := range page.Visible() {
			if p.ProjectName == strings.TrimSpace(name) {
				fmt.Fprintln(a.Out, p.ID)
				break
			}
		}
		return nil

	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("projects delete: expected ID: %w", errUsage)
		}
		return page.Delete(ctx, args[0])

	default:
		return fmt.Errorf("projects %s: %w", sub, errUsage)
	}
}

func (a *App) cmdProject(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("project: expected ID: %w", errUsage)
	}
	if _, err := a.userID(ctx); err != nil {
		return err
	}

	detail := view.NewProjectDetail(a.API.Projects(), a.API.Images(), a.Ingest, a.Notifier, a.Logger)
	if err := detail.Open(ctx, args[0]); err != nil {
		return err
	}
	renderProject(a.Out, detail.Project())
	renderImages(a.Out, detail.Images())
	return nil
}

func (a *App) cmdImages(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("images: expected subcommand: %w", errUsage)
	}
	sub, args := args[0], args[1:]

	userID, err := a.userID(ctx)
	if err != nil {
		return err
	}

	fs := a.flagSet("images " + sub)
	enqueue := fs.Bool("enqueue", false, "queue the upload for the worker instead of uploading now")
	dir := fs.String("dir", ".", "download directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := needArgs(fs, 1, "PROJECT"); err != nil {
		return err
	}
	projectID := fs.Arg(0)

	if sub == "upload" && *enqueue {
		if err := needArgs(fs, 2, "PROJECT FILE.zip"); err != nil {
			return err
		}
		return a.enqueueUpload(ctx, projectID, fs.Arg(1))
	}

	d := a.newDashboard(ctx, userID)
	defer d.close()
	if err := d.open(projectID); err != nil {
		return err
	}

	switch sub {
	case "list":
		renderImages(a.Out, d.gallery.Images())
		return nil

	case "upload":
		if err := needArgs(fs, 2, "PROJECT FILE.zip"); err != nil {
			return err
		}
		if err := d.gallery.Upload(fs.Arg(1)); err != nil {
			return err
		}
		renderImages(a.Out, d.gallery.Images())
		return nil

	case "delete":
		if err := needArgs(fs, 2, "PROJECT IMAGE"); err != nil {
			return err
		}
		return d.gallery.DeleteImage(fs.Arg(1))

	case "download":
		if err := needArgs(fs, 2, "PROJECT IMAGE"); err != nil {
			return err
		}
		path, err := d.gallery.Download(fs.Arg(1), *dir)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.Out, path)
		return nil

	case "search":
		if err := needArgs(fs, 2, "PROJECT QUERY"); err != nil {
			return err
		}
		before := len(d.gallery.Messages())
		err := d.gallery.Search(strings.Join(fs.Args()[1:], " "))
		renderMessages(a.Out, d.gallery.Messages()[before:])
		return err

	case "voice":
		before := len(d.gallery.Messages())
		err := d.search.Voice(ctx, true)
		renderMessages(a.Out, d.gallery.Messages()[before:])
		return err

	default:
		return fmt.Errorf("images %s: %w", sub, errUsage)
	}
}

// enqueueUpload ставит архив в очередь воркера загрузок.
func (a *App) enqueueUpload(ctx context.Context, projectID, path string) error {
	if a.Publisher == nil {
		return fmt.Errorf("queued uploads need RABBITMQ_URL: %w", domain.ErrUnsupported)
	}
	if !usecase.IsZip(path) {
		a.Notifier.Notify(ports.LevelError, "Please upload a ZIP file")
		return domain.ErrNotZip
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := a.Publisher.PublishUploadJob(ctx, payloads.UploadJob{ProjectID: projectID, ZipPath: abs}); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Upload of %s queued for project %s\n", filepath.Base(abs), projectID)
	return nil
}

func (a *App) cmdAlbums(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("albums: expected subcommand: %w", errUsage)
	}
	sub, args := args[0], args[1:]

	if sub == "export" {
		return a.cmdExport(ctx, args)
	}

	userID, err := a.userID(ctx)
	if err != nil {
		return err
	}

	fs := a.flagSet("albums " + sub)
	zoom := fs.Float64("zoom", usecase.MinZoom, "crop zoom, 1..3")
	dx := fs.Float64("x", 0, "crop offset from the image center, px")
	dy := fs.Float64("y", 0, "crop offset from the image center, px")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := needArgs(fs, 1, "PROJECT"); err != nil {
		return err
	}

	d := a.newDashboard(ctx, userID)
	defer d.close()
	if err := d.open(fs.Arg(0)); err != nil {
		return err
	}

	switch sub {
	case "list":
		renderAlbums(a.Out, d.albums.List())
		return nil

	case "show":
		if err := needArgs(fs, 2, "PROJECT ALBUM"); err != nil {
			return err
		}
		if err := d.albums.Select(fs.Arg(1)); err != nil {
			return err
		}
		fmt.Fprintln(a.Out, d.albums.Selected().PersonName)
		renderLinks(a.Out, d.albums.AlbumImages())
		return nil

	case "delete":
		if err := needArgs(fs, 2, "PROJECT ALBUM"); err != nil {
			return err
		}
		return d.albums.Delete(fs.Arg(1))

	case "create":
		if err := needArgs(fs, 3, "PROJECT IMAGE PERSON"); err != nil {
			return err
		}
		dlg := d.albums.NewCreateDialog()
		dlg.SetPersonName(strings.Join(fs.Args()[2:], " "))
		if err := dlg.SelectImage(fs.Arg(1)); err != nil {
			return err
		}
		dlg.SetCrop(usecase.CropView{OffsetX: *dx, OffsetY: *dy, Zoom: *zoom})
		if err := dlg.Create(); err != nil {
			return err
		}
		renderAlbums(a.Out, d.albums.List())
		return nil

	default:
		return fmt.Errorf("albums %s: %w", sub, errUsage)
	}
}

func (a *App) cmdExport(ctx context.Context, args []string) error {
	fs := a.flagSet("albums export")
	dir := fs.String("dir", "", "save album images into DIR")
	toS3 := fs.Bool("s3", false, "upload album images to the configured MinIO/S3 bucket")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := needArgs(fs, 1, "ALBUM"); err != nil {
		return err
	}
	if _, err := a.userID(ctx); err != nil {
		return err
	}

	albumID := fs.Arg(0)
	var (
		written []string
		err     error
	)
	switch {
	case *toS3:
		written, err = a.Exporter.ToStorage(ctx, albumID)
	default:
		target := *dir
		if target == "" {
			target = filepath.Join(".", "album-"+albumID)
		}
		written, err = a.Exporter.ToDir(ctx, albumID, target)
	}
	printLines(a.Out, written)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Exported %d images\n", len(written))
	return nil
}

func printLines(out io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
}
