package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/simp-lee/koiconsult/internal/attach"
	"github.com/simp-lee/koiconsult/internal/client"
	"github.com/simp-lee/koiconsult/internal/console"
	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/notify"
	"github.com/simp-lee/koiconsult/internal/overlay"
)

// reportedError marks an error the notifier has already shown.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func shown(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

func isReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// fail notifies err from a direct API call.
func (e *Env) fail(err error) error {
	if err == nil {
		return nil
	}
	notify.Error(e.Notifier, err)
	return shown(err)
}

func (e *Env) table(header string, rows func(w *tabwriter.Writer)) {
	w := tabwriter.NewWriter(e.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	_ = w.Flush()
}

func (e *Env) pageFooter(page, pages int, total int64) {
	fmt.Fprintf(e.Out, "page %d/%d, %d total\n", page, max(pages, 1), total)
}

// PageFlag is embedded by list commands.
type PageFlag struct {
	Page int `help:"Page to show." default:"1"`
}

// ---- accounts ----

type LoginCmd struct {
	Login    string `arg:"" help:"Email or user name."`
	Password string `help:"Password." env:"KOICTL_PASSWORD" required:""`
}

func (c *LoginCmd) Run(env *Env) error {
	tok, err := env.API.Login(env.Ctx, c.Login, c.Password)
	if err != nil {
		return env.fail(err)
	}
	notify.Success(env.Notifier, fmt.Sprintf("Logged in as %s (%s)", tok.UserName, tok.Role))
	fmt.Fprintf(env.Out, "export KOICTL__TOKEN=%s\n", tok.Token)
	return nil
}

type RegisterCmd struct {
	UserName string `arg:"" name:"user-name"`
	Email    string `arg:""`
	Password string `env:"KOICTL_PASSWORD" required:""`
}

func (c *RegisterCmd) Run(env *Env) error {
	acc, err := env.API.Register(env.Ctx, client.Register{
		UserName: c.UserName, Email: c.Email, Password: c.Password, ConfirmPassword: c.Password,
	})
	if err != nil {
		return env.fail(err)
	}
	notify.Success(env.Notifier, "Account "+acc.UserName+" registered")
	return nil
}

type ForgotPasswordCmd struct {
	Email string `arg:""`
}

func (c *ForgotPasswordCmd) Run(env *Env) error {
	if err := env.API.ForgotPassword(env.Ctx, c.Email); err != nil {
		return env.fail(err)
	}
	notify.Success(env.Notifier, "If the address is registered, a reset email is on its way")
	return nil
}

type ResetPasswordCmd struct {
	Email    string `arg:""`
	Token    string `help:"Reset token from the email." name:"reset-token" required:""`
	Password string `help:"New password." env:"KOICTL_PASSWORD" required:""`
}

func (c *ResetPasswordCmd) Run(env *Env) error {
	err := env.API.ResetPassword(env.Ctx, client.ResetPassword{
		Email: c.Email, NewPassword: c.Password, ConfirmedNewPassword: c.Password, Token: c.Token,
	})
	if err != nil {
		return env.fail(err)
	}
	notify.Success(env.Notifier, "Password changed")
	return nil
}

// ---- blogs ----

type BlogsCmd struct {
	List    BlogsListCmd    `cmd:"" help:"List approved blogs, your own, or all (admin)."`
	Approve BlogsApproveCmd `cmd:"" help:"Approve a pending blog (admin)."`
	Reject  BlogsRejectCmd  `cmd:"" help:"Reject a pending blog (admin)."`
	Save    BlogsSaveCmd    `cmd:"" help:"Write a new blog or edit one of yours."`
}

type BlogsListCmd struct {
	PageFlag
	Scope  string `help:"public, mine or admin." enum:"public,mine,admin" default:"public"`
	Title  string `help:"Title contains."`
	Status string `help:"Pending, Approved or Rejected (admin scope)."`
}

func (c *BlogsListCmd) Run(env *Env) error {
	if c.Scope == "admin" {
		m := console.NewBlogModeration(env.API, env.Notifier, env.PageSize)
		if c.Status != "" {
			s, err := domain.ParseStatus(c.Status)
			if err != nil {
				return env.fail(client.Precondition("Unknown status " + c.Status))
			}
			if err := m.FilterStatus(env.Ctx, &s); err != nil {
				return shown(err)
			}
		} else if err := m.Refetch(env.Ctx); err != nil {
			return shown(err)
		}
		if err := m.SetPage(env.Ctx, c.Page); err != nil {
			return shown(err)
		}
		st := m.State()
		printBlogs(env, st.Items)
		env.pageFooter(st.PageIndex, st.TotalPages, st.TotalItems)
		return nil
	}

	scope := client.BlogsPublic
	if c.Scope == "mine" {
		scope = client.BlogsMine
	}
	feed := console.NewPublicBlogs(env.API, scope, env.Notifier, env.PageSize)
	if err := feed.Search(env.Ctx, c.Title); err != nil {
		return shown(err)
	}
	if err := feed.SetPage(env.Ctx, c.Page); err != nil {
		return shown(err)
	}
	st := feed.State()
	printBlogs(env, st.Items)
	env.pageFooter(st.PageIndex, st.TotalPages, st.TotalItems)
	return nil
}

func printBlogs(env *Env, blogs []client.Blog) {
	env.table("ID\tTITLE\tAUTHOR\tSTATUS\tIMAGES", func(w *tabwriter.Writer) {
		for _, b := range blogs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", b.ID, b.Title, b.UserName, b.Status, len(b.ImageIDs))
		}
	})
}

type BlogReview struct {
	ID uint `arg:""`
	PageFlag
}

// queue loads the page of pending blogs holding the one to review.
func (c *BlogReview) queue(env *Env) (*console.BlogModeration, error) {
	m := console.NewBlogModeration(env.API, env.Notifier, env.PageSize)
	pending := domain.StatusPending
	if err := m.FilterStatus(env.Ctx, &pending); err != nil {
		return nil, shown(err)
	}
	if err := m.SetPage(env.Ctx, c.Page); err != nil {
		return nil, shown(err)
	}
	return m, nil
}

type BlogsApproveCmd struct{ BlogReview }

func (c *BlogsApproveCmd) Run(env *Env) error {
	m, err := c.queue(env)
	if err != nil {
		return err
	}
	return shown(m.Approve(env.Ctx, c.ID))
}

type BlogsRejectCmd struct{ BlogReview }

func (c *BlogsRejectCmd) Run(env *Env) error {
	m, err := c.queue(env)
	if err != nil {
		return err
	}
	return shown(m.Reject(env.Ctx, c.ID))
}

type BlogsSaveCmd struct {
	ID      uint     `help:"Blog to edit; 0 writes a new one."`
	Title   string   `required:""`
	Content string   `required:"" help:"HTML content."`
	Upload  []string `help:"Image files to upload and attach." type:"existingfile"`
	Pick    []uint   `help:"Library image ids to attach."`
	Remove  []uint   `help:"Image ids to remove (edit only)."`
}

func (c *BlogsSaveCmd) Run(env *Env) error {
	feed := console.NewPublicBlogs(env.API, client.BlogsMine, env.Notifier, env.PageSize)
	editor := console.NewBlogEditor(env.API, env.API, env.Notifier, feed.Controller)
	key := overlay.CreateBlog
	if c.ID != 0 {
		key = overlay.EditBlog
		b, err := findOwnBlog(env, feed, c.ID)
		if err != nil {
			return err
		}
		editor.Edit(*b)
	}
	env.Overlays.OpenExclusive(key)
	defer env.Overlays.Close(key)

	stage(editor.Attachments(), c.Upload, c.Pick, c.Remove)
	b, err := editor.Submit(env.Ctx, console.BlogForm{Title: c.Title, Content: c.Content})
	if err != nil {
		return shown(err)
	}
	fmt.Fprintf(env.Out, "blog %d saved with images %v\n", b.ID, b.ImageIDs)
	return nil
}

// findOwnBlog walks the member's blogs for id.
func findOwnBlog(env *Env, feed *console.PublicBlogs, id uint) (*client.Blog, error) {
	if err := feed.Refetch(env.Ctx); err != nil {
		return nil, shown(err)
	}
	for {
		for _, b := range feed.Items() {
			if b.ID == id {
				return &b, nil
			}
		}
		st := feed.State()
		if !st.HasNext {
			return nil, env.fail(client.Precondition(fmt.Sprintf("Blog %d is not one of yours", id)))
		}
		if err := feed.NextPage(env.Ctx); err != nil {
			return nil, shown(err)
		}
	}
}

func stage(rec *attach.Reconciler, uploads []string, picks, removes []uint) {
	for _, path := range uploads {
		rec.AddUploaded(attach.FromPath(path))
	}
	if len(picks) > 0 {
		atts := make([]attach.Attachment, len(picks))
		for i, id := range picks {
			atts[i] = attach.Attachment{ID: id}
		}
		rec.AddExisting(atts)
	}
	for _, id := range removes {
		rec.MarkForRemoval(id)
	}
}

// ---- packages ----

type PackagesCmd struct {
	List PackagesListCmd `cmd:"" help:"List advertisement packages."`
	Show PackagesShowCmd `cmd:"" help:"Show one package."`
	Save PackagesSaveCmd `cmd:"" help:"Create or edit a package (admin)."`
}

type PackagesListCmd struct {
	PageFlag
	Name     string  `help:"Name contains."`
	MaxPrice float64 `help:"Upper price bound." name:"max-price"`
}

func (c *PackagesListCmd) Run(env *Env) error {
	list := console.NewAdPackageList(env.API, env.Notifier, env.PageSize)
	if err := list.Search(env.Ctx, c.Name, c.MaxPrice); err != nil {
		return shown(err)
	}
	if err := list.SetPage(env.Ctx, c.Page); err != nil {
		return shown(err)
	}
	st := list.State()
	env.table("ID\tNAME\tPRICE\tSTATUS\tIMAGES", func(w *tabwriter.Writer) {
		for _, p := range st.Items {
			fmt.Fprintf(w, "%d\t%s\t%.0f\t%s\t%d\n", p.ID, p.Name, p.Price, p.Status, len(p.ImageIDs))
		}
	})
	env.pageFooter(st.PageIndex, st.TotalPages, st.TotalItems)
	return nil
}

type PackagesShowCmd struct {
	ID uint `arg:""`
}

func (c *PackagesShowCmd) Run(env *Env) error {
	p, err := env.API.GetPackage(env.Ctx, c.ID)
	if err != nil {
		return env.fail(err)
	}
	fmt.Fprintf(env.Out, "%s (#%d) %s\nprice %.0f, limits ad=%d content=%d image=%d\n",
		p.Name, p.ID, p.Status, p.Price, p.LimitAd, p.LimitContent, p.LimitImage)
	for _, img := range p.Images {
		fmt.Fprintf(env.Out, "  image %d  %s\n", img.ID, env.API.ResolveURL(img.FilePath))
	}
	return nil
}

type PackagesSaveCmd struct {
	ID           uint     `help:"Package to edit; 0 creates one."`
	Name         string   `help:"Name; kept when editing and empty."`
	Price        *float64 `help:"Price."`
	Description  *string  `help:"HTML description."`
	LimitAd      *int     `name:"limit-ad"`
	LimitContent *int     `name:"limit-content"`
	LimitImage   *int     `name:"limit-image"`
	Status       string   `help:"active or inactive; kept when empty." enum:",active,inactive" default:""`
	Upload       []string `type:"existingfile"`
	Pick         []uint
	Remove       []uint
}

func (c *PackagesSaveCmd) Run(env *Env) error {
	editor := console.NewAdPackageEditor(env.API, env.API, env.Notifier, nil)
	var form console.PackageForm
	key := overlay.CreatePackage
	if c.ID != 0 {
		key = overlay.EditPackage
		p, err := editor.Load(env.Ctx, c.ID)
		if err != nil {
			return shown(err)
		}
		form = console.FormOf(*p)
	}
	env.Overlays.OpenExclusive(key)
	defer env.Overlays.Close(key)

	if c.Name != "" {
		form.Name = c.Name
	}
	setIf(&form.Price, c.Price)
	setIf(&form.Description, c.Description)
	setIf(&form.LimitAd, c.LimitAd)
	setIf(&form.LimitContent, c.LimitContent)
	setIf(&form.LimitImage, c.LimitImage)
	if c.Status != "" {
		active := c.Status == "active"
		form.IsActive = &active
	}

	stage(editor.Attachments(), c.Upload, c.Pick, c.Remove)
	p, err := editor.Submit(env.Ctx, form)
	if err != nil {
		return shown(err)
	}
	fmt.Fprintf(env.Out, "package %d saved with images %v\n", p.ID, p.ImageIDs)
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// ---- images ----

type ImagesCmd struct {
	List   ImagesListCmd   `cmd:"" help:"List your images, six per page."`
	Upload ImagesUploadCmd `cmd:"" help:"Upload images to your library."`
	Delete ImagesDeleteCmd `cmd:"" help:"Delete an unused image."`
}

type ImagesListCmd struct {
	PageFlag
	Name string `help:"File name contains."`
}

func (c *ImagesListCmd) Run(env *Env) error {
	key := overlay.ImagePicker("library")
	picker := console.NewImagePicker(env.API, env.Overlays.Store(key), env.Notifier, nil)
	if err := picker.Open(env.Ctx); err != nil {
		return shown(err)
	}
	defer picker.Close()
	if c.Name != "" {
		if err := picker.Search(env.Ctx, c.Name); err != nil {
			return shown(err)
		}
	}
	if err := picker.SetPage(env.Ctx, c.Page); err != nil {
		return shown(err)
	}
	st := picker.State()
	env.table("ID\tFILE\tSIZE\tURL", func(w *tabwriter.Writer) {
		for _, img := range st.Items {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", img.ID, img.FileName, img.Size, env.API.ResolveURL(img.FilePath))
		}
	})
	env.pageFooter(st.PageIndex, st.TotalPages, st.TotalItems)
	return nil
}

type ImagesUploadCmd struct {
	Files []string `arg:"" type:"existingfile"`
}

func (c *ImagesUploadCmd) Run(env *Env) error {
	var failed error
	for _, path := range c.Files {
		f := attach.FromPath(path)
		rc, err := f.Open()
		if err != nil {
			failed = env.fail(client.Precondition("Cannot read " + path))
			continue
		}
		img, err := env.API.UploadImage(env.Ctx, f.Name, rc)
		rc.Close()
		if err != nil {
			failed = env.fail(err)
			continue
		}
		fmt.Fprintf(env.Out, "%d\t%s\n", img.ID, env.API.ResolveURL(img.FilePath))
	}
	return failed
}

type ImagesDeleteCmd struct {
	ID  uint `arg:""`
	Yes bool `help:"Do not ask for confirmation." short:"y"`
}

func (c *ImagesDeleteCmd) Run(env *Env) error {
	if !c.Yes {
		return env.fail(client.Precondition("Pass --yes to delete the image"))
	}
	if err := env.API.DeleteImage(env.Ctx, c.ID); err != nil {
		return env.fail(err)
	}
	notify.Success(env.Notifier, "Image deleted")
	return nil
}

// ---- profiles ----

type ProfileCmd struct {
	Show ProfileShowCmd `cmd:"" help:"Show your profile."`
	Save ProfileSaveCmd `cmd:"" help:"Update your profile and avatar."`
}

type ProfileShowCmd struct{}

func (c *ProfileShowCmd) Run(env *Env) error {
	editor := console.NewProfileEditor(env.API, env.API, env.API.Session(), env.Notifier)
	d, err := editor.Load(env.Ctx)
	if errors.Is(err, console.ErrNoProfile) {
		return nil
	}
	if err != nil {
		return shown(err)
	}
	dob := ""
	if d.DateOfBirth != nil {
		dob = *d.DateOfBirth
	}
	fmt.Fprintf(env.Out, "%s (%s)\nidentity card %s\nborn %s, %s\navatar %s\n",
		d.FullName, d.UserName, d.IdentityCard, dob, d.Gender, env.API.ResolveURL(d.Avatar))
	return nil
}

type ProfileSaveCmd struct {
	FullName     string `name:"full-name" required:""`
	IdentityCard string `name:"identity-card"`
	DateOfBirth  string `name:"date-of-birth" help:"YYYY-MM-DD."`
	Gender       string
	Avatar       string `type:"existingfile" help:"Image file to use as avatar."`
}

func (c *ProfileSaveCmd) Run(env *Env) error {
	env.Overlays.OpenExclusive(overlay.Profile)
	defer env.Overlays.Close(overlay.Profile)

	editor := console.NewProfileEditor(env.API, env.API, env.API.Session(), env.Notifier)
	if _, err := editor.Load(env.Ctx); err != nil && !errors.Is(err, console.ErrNoProfile) {
		return shown(err)
	}
	form := client.SaveUserDetail{FullName: c.FullName, IdentityCard: c.IdentityCard, Gender: c.Gender}
	if dob := strings.TrimSpace(c.DateOfBirth); dob != "" {
		form.DateOfBirth = &dob
	}
	var avatar *attach.File
	if c.Avatar != "" {
		f := attach.FromPath(c.Avatar)
		avatar = &f
	}
	_, err := editor.Save(env.Ctx, form, avatar)
	return shown(err)
}

// ---- users ----

type UsersCmd struct {
	PageFlag
	FullName string `name:"full-name"`
	UserName string `name:"user-name"`
}

func (c *UsersCmd) Run(env *Env) error {
	list := console.NewUserList(env.API, env.Notifier, env.PageSize)
	if err := list.Search(env.Ctx, c.FullName, c.UserName); err != nil {
		return shown(err)
	}
	if err := list.SetPage(env.Ctx, c.Page); err != nil {
		return shown(err)
	}
	st := list.State()
	env.table("USER\tNAME\tGENDER\tSINCE", func(w *tabwriter.Writer) {
		for _, d := range st.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.UserName, d.FullName, d.Gender, d.CreatedDate.Format("2006-01-02"))
		}
	})
	env.pageFooter(st.PageIndex, st.TotalPages, st.TotalItems)
	return nil
}

// ---- ponds ----

type PondsCmd struct {
	List   PondsListCmd   `cmd:"" help:"List your ponds."`
	Add    PondsSaveCmd   `cmd:"" help:"Add a pond."`
	Update PondsUpdateCmd `cmd:"" help:"Change a pond."`
	Delete PondsDeleteCmd `cmd:"" help:"Delete a pond."`
}

func loadPonds(env *Env) (*console.PondList, error) {
	l := console.NewPondList(env.API, env.Overlays.Store(overlay.ConfirmDelete), env.Notifier)
	if err := l.Load(env.Ctx); err != nil {
		return nil, shown(err)
	}
	return l, nil
}

type PondsListCmd struct{}

func (c *PondsListCmd) Run(env *Env) error {
	l, err := loadPonds(env)
	if err != nil {
		return err
	}
	env.table("ID\tNAME\tKOI\tIMAGE", func(w *tabwriter.Writer) {
		for _, p := range l.Ponds() {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", p.ID, p.PondName, p.Quantity, p.Image)
		}
	})
	return nil
}

type PondsSaveCmd struct {
	Name        string `arg:""`
	Quantity    int    `help:"Number of koi."`
	Image       string `help:"Image URL."`
	Description string
}

func (c *PondsSaveCmd) request() client.SavePond {
	return client.SavePond{PondName: c.Name, Quantity: c.Quantity, Image: c.Image, Description: c.Description}
}

func (c *PondsSaveCmd) Run(env *Env) error {
	l, err := loadPonds(env)
	if err != nil {
		return err
	}
	p, err := l.Add(env.Ctx, c.request())
	if err != nil {
		return shown(err)
	}
	fmt.Fprintf(env.Out, "pond %d added\n", p.ID)
	return nil
}

type PondsUpdateCmd struct {
	ID uint `arg:""`
	PondsSaveCmd
}

func (c *PondsUpdateCmd) Run(env *Env) error {
	l, err := loadPonds(env)
	if err != nil {
		return err
	}
	_, err = l.Update(env.Ctx, c.ID, c.request())
	return shown(err)
}

type PondsDeleteCmd struct {
	ID  uint `arg:""`
	Yes bool `help:"Confirm the deletion." short:"y"`
}

func (c *PondsDeleteCmd) Run(env *Env) error {
	l, err := loadPonds(env)
	if err != nil {
		return err
	}
	if err := l.RequestDelete(c.ID); err != nil {
		return shown(err)
	}
	if !c.Yes {
		l.CancelDelete()
		return env.fail(client.Precondition("Pass --yes to delete the pond"))
	}
	return shown(l.ConfirmDelete(env.Ctx))
}

// ---- payments ----

type PayCmd struct {
	Package     string  `arg:"" help:"Package name."`
	Amount      float64 `required:""`
	FullName    string  `name:"full-name"`
	Description string
}

func (c *PayCmd) Run(env *Env) error {
	url, err := env.API.RequestPayment(env.Ctx, client.PaymentRequest{
		PackageName: c.Package, FullName: c.FullName, Description: c.Description, Amount: c.Amount,
	})
	if err != nil {
		return env.fail(err)
	}
	fmt.Fprintln(env.Out, url)
	return nil
}
