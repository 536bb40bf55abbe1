package blog

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"ditroboticstw/internal/auth"
	"ditroboticstw/internal/logger"
	"ditroboticstw/internal/metrics"
	"ditroboticstw/internal/middleware"
	"ditroboticstw/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const DefaultPerPage = 10

//go:embed templates/*.html
var templateFS embed.FS

// Templates returns the blog page templates for web.NewTemplates.
func Templates() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

type Handler struct {
	store     Store
	users     *auth.UserLoader
	sanitizer *Sanitizer
	perPage   int
	now       func() time.Time
}

// NewHandler builds the blog controller. users must be the loader the
// session-auth layer uses so post authors and logged-in users agree.
func NewHandler(store Store, users *auth.UserLoader) *Handler {
	return &Handler{
		store:     store,
		users:     users,
		sanitizer: NewSanitizer(),
		perPage:   DefaultPerPage,
		now:       time.Now,
	}
}

// RegisterRoutes mounts the blog on r, normally the /blog group. Writing
// requires the blogger capability.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.index)
	r.GET("/page/:id", h.show)
	r.GET("/author/:user_id", h.byAuthor)

	editor := r.Group("", middleware.RequireCapability(auth.CapabilityBlogger))
	editor.GET("/editor/", h.editor)
	editor.POST("/editor/", h.save)
	editor.GET("/editor/:id", h.editor)
	editor.POST("/editor/:id", h.save)
	editor.POST("/delete/:id", h.delete)
}

type postView struct {
	Post
	Author  *auth.User
	CanEdit bool
}

func (h *Handler) view(c *gin.Context, p Post) postView {
	return postView{
		Post:    p,
		Author:  h.users.LoadUser(p.AuthorID),
		CanEdit: h.isAuthor(c, p),
	}
}

// isAuthor reports whether the logged-in blogger wrote p.
func (h *Handler) isAuthor(c *gin.Context, p Post) bool {
	ctx := c.Request.Context()
	u := auth.UserFromContext(ctx)
	return u != nil &&
		u.ID == p.AuthorID &&
		auth.PrincipalFromContext(ctx).Can(auth.CapabilityBlogger)
}

func (h *Handler) index(c *gin.Context) {
	h.list(c, "Blog", "/blog/", nil)
}

func (h *Handler) byAuthor(c *gin.Context) {
	author := h.users.LoadUser(c.Param("user_id"))
	if author == nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	h.list(c, author.Label, "/blog/author/"+author.ID, author)
}

func (h *Handler) list(c *gin.Context, title, basePath string, author *auth.User) {
	page := pageNumber(c.Query("page"))

	opts := ListOptions{
		Offset: (page - 1) * h.perPage,
		Limit:  h.perPage + 1,
	}
	if author != nil {
		opts.AuthorID = author.ID
	}

	posts, err := h.store.List(c.Request.Context(), opts)
	if err != nil {
		h.fail(c, "blog list failed", err)
		return
	}

	next := 0
	if len(posts) > h.perPage {
		posts = posts[:h.perPage]
		next = page + 1
	}

	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, h.view(c, p))
	}

	c.HTML(http.StatusOK, "blog_index.html", web.Data(c, title, gin.H{
		"Posts":    views,
		"Author":   author,
		"BasePath": basePath,
		"PrevPage": page - 1,
		"NextPage": next,
	}))
}

func (h *Handler) show(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "blog_post.html", web.Data(c, p.Title, gin.H{
		"Post": h.view(c, *p),
	}))
}

func (h *Handler) editor(c *gin.Context) {
	var p Post
	if c.Param("id") != "" {
		loaded, ok := h.loadOwned(c)
		if !ok {
			return
		}
		p = *loaded
	}

	h.renderEditor(c, http.StatusOK, p, "")
}

func (h *Handler) save(c *gin.Context) {
	ctx := c.Request.Context()

	user := auth.UserFromContext(ctx)
	if user == nil {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	var p Post
	if c.Param("id") != "" {
		loaded, ok := h.loadOwned(c)
		if !ok {
			return
		}
		p = *loaded
	}

	p.Title = h.sanitizer.Title(c.PostForm("title"))
	p.Body = h.sanitizer.Body(c.PostForm("text"))
	if p.Title == "" || p.Body == "" {
		h.renderEditor(c, http.StatusBadRequest, p, "Title and body are required.")
		return
	}

	now := h.now().UTC()
	p.UpdatedAt = now

	op := metrics.BlogUpdate
	var err error
	if p.ID == "" {
		op = metrics.BlogCreate
		p.ID = uuid.NewString()
		p.AuthorID = user.ID
		p.CreatedAt = now
		err = h.store.Create(ctx, &p)
	} else {
		err = h.store.Update(ctx, &p)
	}
	if err != nil {
		h.fail(c, "blog save failed", err)
		return
	}

	logger.Info("blog post saved", map[string]any{
		"op":        op,
		"post_id":   p.ID,
		"author_id": p.AuthorID,
	})
	metrics.RecordBlogPost(op)

	c.Redirect(http.StatusFound, "/blog/page/"+p.ID)
}

func (h *Handler) delete(c *gin.Context) {
	p, ok := h.loadOwned(c)
	if !ok {
		return
	}

	if err := h.store.Delete(c.Request.Context(), p.ID); err != nil && !errors.Is(err, ErrNotFound) {
		h.fail(c, "blog delete failed", err)
		return
	}

	logger.Info("blog post deleted", map[string]any{
		"post_id":   p.ID,
		"author_id": p.AuthorID,
	})
	metrics.RecordBlogPost(metrics.BlogDelete)

	c.Redirect(http.StatusFound, "/blog/")
}

func (h *Handler) renderEditor(c *gin.Context, status int, p Post, msg string) {
	title := "New post"
	if p.ID != "" {
		title = "Edit post"
	}
	c.HTML(status, "blog_editor.html", web.Data(c, title, gin.H{
		"Post":  p,
		"Error": msg,
	}))
}

// load fetches the post named by the :id parameter, answering 404 itself
// when there is none.
func (h *Handler) load(c *gin.Context) (*Post, bool) {
	p, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		h.fail(c, "blog load failed", err)
		return nil, false
	}
	return p, true
}

// loadOwned is load restricted to the post's author.
func (h *Handler) loadOwned(c *gin.Context) (*Post, bool) {
	p, ok := h.load(c)
	if !ok {
		return nil, false
	}
	if !h.isAuthor(c, *p) {
		c.AbortWithStatus(http.StatusForbidden)
		return nil, false
	}
	return p, true
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	logger.Error(msg, map[string]any{
		"error": err.Error(),
		"path":  c.Request.URL.Path,
	})
	_ = c.Error(err)
	c.AbortWithStatus(http.StatusInternalServerError)
}

func pageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
