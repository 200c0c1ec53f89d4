package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/GoArmGo/CuratAI/internal/domain"
	"github.com/GoArmGo/CuratAI/internal/usecase"
)

const shellHelp = `commands:
  projects                 list projects (* marks the selected one)
  new NAME                 create a project and select it
  rm ID                    delete a project
  use ID                   select a project
  images                   show the gallery feed
  upload FILE.zip          upload an archive into the selected project
  search QUERY             search images ("in album: NAME" opens an album)
  voice                    dictate a search query
  delimg ID                delete an image
  download ID [DIR]        save an image
  albums                   list albums
  open ALBUM               show album images
  back                     return to the album grid
  rmalbum ALBUM            delete an album
  unlink INDEX             hide an image from the open album
  face IMAGE NAME [ZOOM [DX DY]]  create an album from a face crop
  export ALBUM [DIR]       save album images
  logout
  quit
`

// runShell - интерактивный главный экран: сайдбар проектов, галерея и альбомы.
func (a *App) runShell(ctx context.Context) error {
	userID, err := a.userID(ctx)
	if err != nil {
		return err
	}

	d := a.newDashboard(ctx, userID)
	defer d.close()

	fmt.Fprintln(a.Out, "CuratAI shell. Type 'help' for commands.")
	renderProjects(a.Out, d.sidebar.Projects(), 0)

	scanner := bufio.NewScanner(a.In)
	for {
		fmt.Fprintf(a.Out, "%s> ", promptFor(d))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		quit, err := a.shellExec(ctx, d, line)
		if err != nil && !errors.Is(err, errUsage) {
			a.Logger.Debug("shell command failed", "line", line, "error", err)
		}
		if errors.Is(err, errUsage) {
			fmt.Fprintln(a.Out, err)
		}
		if quit {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return scanner.Err()
}

func promptFor(d *dashboard) string {
	id := d.store.SelectedProject()
	if id == "" {
		return "curatai"
	}
	for _, p := range d.sidebar.Projects() {
		if p.ID == id {
			return "curatai:" + p.ProjectName
		}
	}
	return "curatai:" + id
}

// shellExec выполняет одну строку. quit - пользователь вышел.
func (a *App) shellExec(ctx context.Context, d *dashboard, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

	switch cmd {
	case "help", "?":
		fmt.Fprint(a.Out, shellHelp)

	case "quit", "exit":
		return true, nil

	case "projects":
		if err := d.sidebar.Load(ctx); err != nil {
			return false, err
		}
		a.printSidebar(d)

	case "new":
		d.sidebar.OpenCreate()
		d.sidebar.SetName(rest)
		if err := d.sidebar.Create(ctx); err != nil {
			d.sidebar.CloseCreate()
			return false, err
		}
		d.wait()

	case "rm":
		if len(args) != 1 {
			return false, fmt.Errorf("rm ID: %w", errUsage)
		}
		if err := d.sidebar.Delete(ctx, args[0]); err != nil {
			return false, err
		}
		d.wait()

	case "use":
		if len(args) != 1 {
			return false, fmt.Errorf("use ID: %w", errUsage)
		}
		if err := d.open(args[0]); err != nil {
			return false, err
		}
		renderMessages(a.Out, d.gallery.Messages())

	case "images":
		if d.gallery.Loading() {
			fmt.Fprintln(a.Out, "Loading...")
		}
		renderMessages(a.Out, d.gallery.Messages())

	case "upload":
		if rest == "" {
			return false, fmt.Errorf("upload FILE.zip: %w", errUsage)
		}
		if err := d.gallery.Upload(rest); err != nil {
			return false, err
		}
		renderImages(a.Out, d.gallery.Images())

	case "search":
		d.search.SetQuery(rest)
		return false, a.submitSearch(d, d.search.Submit)

	case "voice":
		return false, a.submitSearch(d, func() error { return d.search.Voice(ctx, true) })

	case "delimg":
		if len(args) != 1 {
			return false, fmt.Errorf("delimg ID: %w", errUsage)
		}
		return false, d.gallery.DeleteImage(args[0])

	case "download":
		if len(args) < 1 {
			return false, fmt.Errorf("download ID [DIR]: %w", errUsage)
		}
		dir := "."
		if len(args) > 1 {
			dir = args[1]
		}
		path, err := d.gallery.Download(args[0], dir)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(a.Out, path)

	case "albums":
		if d.albums.LoadingAlbums() {
			fmt.Fprintln(a.Out, "Loading albums...")
		}
		renderAlbums(a.Out, d.albums.List())

	case "open":
		if len(args) != 1 {
			return false, fmt.Errorf("open ALBUM: %w", errUsage)
		}
		if err := d.albums.Select(args[0]); err != nil {
			if errors.Is(err, domain.ErrAlbumNotFound) {
				fmt.Fprintln(a.Out, err)
			}
			return false, err
		}
		a.printAlbum(d)

	case "back":
		d.albums.Back()
		renderAlbums(a.Out, d.albums.List())

	case "rmalbum":
		if len(args) != 1 {
			return false, fmt.Errorf("rmalbum ALBUM: %w", errUsage)
		}
		return false, d.albums.Delete(args[0])

	case "unlink":
		if len(args) != 1 {
			return false, fmt.Errorf("unlink INDEX: %w", errUsage)
		}
		idx, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("unlink %q: %w", args[0], errUsage)
		}
		if err := d.albums.RemoveImage(idx); err != nil {
			return false, err
		}
		a.printAlbum(d)

	case "face":
		return false, a.shellFace(d, args)

	case "export":
		if len(args) < 1 {
			return false, fmt.Errorf("export ALBUM [DIR]: %w", errUsage)
		}
		return false, a.cmdExport(ctx, append(exportFlags(args[1:]), args[0]))

	case "logout":
		if err := d.sidebar.Logout(ctx); err != nil {
			return false, err
		}
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %q, type 'help': %w", cmd, errUsage)
	}
	return false, nil
}

func exportFlags(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	if args[0] == "s3" {
		return []string{"-s3"}
	}
	return []string{"-dir", args[0]}
}

// submitSearch выполняет поиск и печатает добавленные в ленту записи.
func (a *App) submitSearch(d *dashboard, submit func() error) error {
	before := len(d.gallery.Messages())
	err := submit()
	msgs := d.gallery.Messages()
	if before <= len(msgs) {
		renderMessages(a.Out, msgs[before:])
	}
	return err
}

// shellFace: face IMAGE NAME [ZOOM [DX DY]]. Имя может состоять из нескольких слов,
// числовые хвостовые аргументы относятся к рамке.
func (a *App) shellFace(d *dashboard, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("face IMAGE NAME [ZOOM [DX DY]]: %w", errUsage)
	}
	imageID, words := args[0], args[1:]

	var nums []float64
	for len(words) > 1 && len(nums) < 3 {
		v, err := strconv.ParseFloat(words[len(words)-1], 64)
		if err != nil {
			break
		}
		nums = append([]float64{v}, nums...)
		words = words[:len(words)-1]
	}

	crop := usecase.CropView{Zoom: usecase.MinZoom}
	switch len(nums) {
	case 1:
		crop.Zoom = nums[0]
	case 2:
		crop.Zoom, crop.OffsetX = nums[0], nums[1]
	case 3:
		crop.Zoom, crop.OffsetX, crop.OffsetY = nums[0], nums[1], nums[2]
	}

	dlg := d.albums.NewCreateDialog()
	dlg.SetPersonName(strings.Join(words, " "))
	if err := dlg.SelectImage(imageID); err != nil {
		return err
	}
	dlg.SetCrop(crop)
	area := dlg.Area()
	fmt.Fprintf(a.Out, "crop %dx%d at (%d,%d)\n", area.Width, area.Height, area.X, area.Y)
	if err := dlg.Create(); err != nil {
		return err
	}
	renderAlbums(a.Out, d.albums.List())
	return nil
}

func (a *App) printSidebar(d *dashboard) {
	selected := d.store.SelectedProject()
	projects := d.sidebar.Projects()
	if len(projects) == 0 {
		fmt.Fprintln(a.Out, "No projects yet. Create one with 'new NAME'.")
		return
	}
	for _, p := range projects {
		mark := " "
		if p.ID == selected {
			mark = "*"
		}
		fmt.Fprintf(a.Out, "%s %s\t%s\n", mark, p.ID, p.ProjectName)
	}
}

func (a *App) printAlbum(d *dashboard) {
	sel := d.albums.Selected()
	if sel == nil {
		return
	}
	fmt.Fprintf(a.Out, "%s (%s)\n", sel.PersonName, sel.ID)
	renderLinks(a.Out, d.albums.AlbumImages())
}
