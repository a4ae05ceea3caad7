// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides in-memory fakes of the handler dependencies and
// request helpers shared by the handler tests.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogcms/internal/ai"
	"blogcms/internal/draft"
	"blogcms/internal/middleware"
	"blogcms/internal/models"
	"blogcms/internal/session"
	"blogcms/internal/store"
)

// ---------- fakePosts ----------

type fakePosts struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*models.Post
	calls map[string]int
	err   error // returned by every method when set
}

func newFakePosts(posts ...*models.Post) *fakePosts {
	f := &fakePosts{posts: map[uuid.UUID]*models.Post{}, calls: map[string]int{}}
	for _, p := range posts {
		f.posts[p.ID] = p
	}
	return f
}

func (f *fakePosts) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.err
}

func (f *fakePosts) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakePosts) filter(keep func(*models.Post) bool) []models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Post
	for _, p := range f.posts {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakePosts) ListPublished(context.Context) ([]models.Post, error) {
	if err := f.record("ListPublished"); err != nil {
		return nil, err
	}
	return f.filter(func(p *models.Post) bool { return p.Published }), nil
}

func (f *fakePosts) ListFeatured(context.Context) ([]models.Post, error) {
	if err := f.record("ListFeatured"); err != nil {
		return nil, err
	}
	return f.filter(func(p *models.Post) bool { return p.Published && p.Featured }), nil
}

func (f *fakePosts) ListTrending(context.Context) ([]models.Post, error) {
	if err := f.record("ListTrending"); err != nil {
		return nil, err
	}
	return f.filter(func(p *models.Post) bool { return p.Published && p.Trending }), nil
}

func (f *fakePosts) ListByCategory(_ context.Context, slug string) ([]models.Post, error) {
	if err := f.record("ListByCategory"); err != nil {
		return nil, err
	}
	return f.filter(func(p *models.Post) bool {
		return p.Published && p.Category != nil && p.Category.Slug == slug
	}), nil
}

func (f *fakePosts) ListAll(context.Context) ([]models.Post, error) {
	if err := f.record("ListAll"); err != nil {
		return nil, err
	}
	return f.filter(func(*models.Post) bool { return true }), nil
}

func (f *fakePosts) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	if err := f.record("FindBySlug"); err != nil {
		return nil, err
	}
	for _, p := range f.filter(func(p *models.Post) bool { return p.Published && p.Slug == slug }) {
		return &p, nil
	}
	return nil, nil
}

func (f *fakePosts) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	if err := f.record("FindByID"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakePosts) SlugExists(_ context.Context, slug string) (bool, error) {
	if err := f.record("SlugExists"); err != nil {
		return false, err
	}
	return len(f.filter(func(p *models.Post) bool { return p.Slug == slug })) > 0, nil
}

func (f *fakePosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	if err := f.record("Create"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	cp.ID = uuid.New()
	cp.Status = models.PostStatusDraft
	if cp.Published {
		cp.Status = models.PostStatusPublished
	}
	cp.CreatedAt = time.Now()
	f.posts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakePosts) update(name string, id uuid.UUID, apply func(*models.Post)) error {
	if err := f.record(name); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return store.ErrNotFound
	}
	apply(p)
	return nil
}

func (f *fakePosts) SetPublished(_ context.Context, id uuid.UUID, published bool) error {
	return f.update("SetPublished", id, func(p *models.Post) {
		p.Published = published
		p.Status = models.PostStatusDraft
		if published {
			p.Status = models.PostStatusPublished
		}
	})
}

func (f *fakePosts) SetFlags(_ context.Context, id uuid.UUID, featured, trending bool) error {
	return f.update("SetFlags", id, func(p *models.Post) {
		p.Featured, p.Trending = featured, trending
	})
}

func (f *fakePosts) SetFeaturedImage(_ context.Context, id uuid.UUID, url string) error {
	return f.update("SetFeaturedImage", id, func(p *models.Post) { p.FeaturedImage = url })
}

func (f *fakePosts) Delete(_ context.Context, id uuid.UUID) error {
	if err := f.record("Delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePosts) IncrementViews(_ context.Context, slug string) (bool, error) {
	if err := f.record("IncrementViews"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Published && p.Slug == slug {
			p.Views++
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePosts) Stats(context.Context) (*models.PostStats, error) {
	if err := f.record("Stats"); err != nil {
		return nil, err
	}
	all := f.filter(func(*models.Post) bool { return true })
	s := &models.PostStats{Total: len(all)}
	for _, p := range all {
		if p.Published {
			s.Published++
		} else {
			s.Drafts++
		}
		s.TotalViews += p.Views
		s.TotalLikes += p.Likes
	}
	return s, nil
}

// ---------- fakeCategories ----------

type fakeCategories struct {
	mu   sync.Mutex
	cats map[uuid.UUID]*models.Category
	err  error
}

func newFakeCategories(cats ...*models.Category) *fakeCategories {
	f := &fakeCategories{cats: map[uuid.UUID]*models.Category{}}
	for _, c := range cats {
		f.cats[c.ID] = c
	}
	return f
}

func (f *fakeCategories) List(context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Category
	for _, c := range f.cats {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCategories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.cats[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCategories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.cats {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCategories) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.cats[id]
	return ok, nil
}

func (f *fakeCategories) slugTaken(slug string, except uuid.UUID) bool {
	for _, c := range f.cats {
		if c.Slug == slug && c.ID != except {
			return true
		}
	}
	return false
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.slugTaken(c.Slug, uuid.Nil) {
		return nil, store.ErrConflict
	}
	cp := *c
	cp.ID = uuid.New()
	if cp.Color == "" {
		cp.Color = models.DefaultCategoryColor
	}
	f.cats[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeCategories) Update(_ context.Context, c *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.cats[c.ID]; !ok {
		return store.ErrNotFound
	}
	if f.slugTaken(c.Slug, c.ID) {
		return store.ErrConflict
	}
	cp := *c
	f.cats[c.ID] = &cp
	return nil
}

func (f *fakeCategories) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.cats[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.cats, id)
	return nil
}

// ---------- fakeUsers ----------

// fakeUsers stores plain passwords in PasswordHash.
type fakeUsers struct {
	mu    sync.Mutex
	users []*models.User
	err   error
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) List(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, f.err
}

func (f *fakeUsers) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users), f.err
}

func (f *fakeUsers) CheckPassword(u *models.User, password string) bool {
	return u.PasswordHash == password
}

// ---------- fakeComments ----------

type fakeComments struct {
	mu       sync.Mutex
	comments []models.Comment
	err      error
}

func (f *fakeComments) ListByPost(_ context.Context, postID uuid.UUID) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComments) Create(_ context.Context, postID, authorID uuid.UUID, content string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c := models.Comment{ID: uuid.New(), PostID: postID, AuthorID: authorID, Content: content, CreatedAt: time.Now()}
	f.comments = append(f.comments, c)
	return &c, nil
}

func (f *fakeComments) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.comments), f.err
}

// ---------- fakeSessions ----------

type fakeSessions struct {
	mu        sync.Mutex
	created   []*session.Data
	destroyed int
	err       error
}

func (f *fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, data)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "sid"})
	return "sid", nil
}

func (f *fakeSessions) Destroy(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed++
	return f.err
}

// ---------- fakeGenerator / fakeRegistry ----------

type fakeGenerator struct {
	mu    sync.Mutex
	draft *draft.Draft
	err   error
	reqs  []draft.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req draft.Request) (*draft.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.draft, f.err
}

type fakeRegistry struct {
	active    string
	available []string
}

func (f *fakeRegistry) ActiveName() string  { return f.active }
func (f *fakeRegistry) Available() []string { return f.available }

func (f *fakeRegistry) SetActive(name string) error {
	for _, n := range f.available {
		if n == name {
			f.active = name
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ai.ErrUnknownProvider, name)
}

// ---------- fakeMirror / fakeObjects ----------

type fakeMirror struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeMirror) Image(_ context.Context, src string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, src)
	return "https://cdn.test/featured/mirrored.jpg"
}

type fakeObjects struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeObjects) ExtractKey(rawURL string) (string, bool) {
	return strings.CutPrefix(rawURL, "https://cdn.test/")
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

// ---------- request helpers ----------

// newJSONRequest builds a request with a JSON-encoded body (or none).
func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withURLParams attaches chi URL parameters to req.
func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// withSession attaches a session with the given role.
func withSession(req *http.Request, userID uuid.UUID, role string) *http.Request {
	return req.WithContext(middleware.WithSession(req.Context(), &session.Data{
		UserID: userID,
		Email:  role + "@blogcms.local",
		Name:   "Test " + role,
		Role:   role,
	}))
}

// decodeBody decodes the recorder body into dst.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

// errorOf returns the error and field of a JSON error body.
func errorOf(t *testing.T, rr *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body fieldError
	decodeBody(t, rr, &body)
	return body.Error, body.Field
}

// ---------- fixtures ----------

func testCategory(slug string) *models.Category {
	return &models.Category{ID: uuid.New(), Name: strings.ToUpper(slug[:1]) + slug[1:], Slug: slug, Color: "bg-blue-500"}
}

func testPost(slug string, cat *models.Category, published bool) *models.Post {
	p := &models.Post{
		ID:            uuid.New(),
		Title:         "Post " + slug,
		Slug:          slug,
		Content:       "# Heading\n\nSome **bold** words here.",
		Excerpt:       "Excerpt.",
		FeaturedImage: "https://images.pexels.com/photos/1/x.jpeg",
		Published:     published,
		Status:        models.PostStatusDraft,
		CreatedAt:     time.Now(),
	}
	if published {
		p.Status = models.PostStatusPublished
	}
	if cat != nil {
		p.CategoryID = cat.ID
		p.Category = cat
	}
	return p
}
