package repositories

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/picstream/backend/internal/models"
)

// FileStore keeps the three collections (users, posts, comments) as JSON
// arrays on disk with in-memory indexes by id. A single RWMutex serializes
// writers, and each mutation rewrites only the affected collection via a
// temp file + rename, so a crashed write never leaves a torn file.
type FileStore struct {
	mu  sync.RWMutex
	dir string

	users     map[string]*models.User
	userOrder []string

	posts     map[string]*models.Post
	postOrder []string

	comments     map[string]*models.Comment
	commentOrder []string
}

// storedUser re-exposes the password hash, which the API model never
// serializes.
type storedUser struct {
	models.User
	Password string `json:"password"`
}

// NewFileStore opens (or initializes) the collections under dir
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &FileStore{
		dir:      dir,
		users:    make(map[string]*models.User),
		posts:    make(map[string]*models.Post),
		comments: make(map[string]*models.Comment),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Repositories exposes the store through the per-entity interfaces
func (s *FileStore) Repositories() *Store {
	return &Store{
		Users:    &fileUserRepo{s},
		Follows:  &fileFollowRepo{s},
		Posts:    &filePostRepo{s},
		Comments: &fileCommentRepo{s},
	}
}

func (s *FileStore) load() error {
	var stored []storedUser
	if err := readCollection(filepath.Join(s.dir, "users.json"), &stored); err != nil {
		return err
	}
	for _, su := range stored {
		u := su.User
		u.Password = su.Password
		s.users[u.ID] = &u
		s.userOrder = append(s.userOrder, u.ID)
	}

	var posts []models.Post
	if err := readCollection(filepath.Join(s.dir, "posts.json"), &posts); err != nil {
		return err
	}
	for i := range posts {
		p := posts[i]
		s.posts[p.ID] = &p
		s.postOrder = append(s.postOrder, p.ID)
	}

	var comments []models.Comment
	if err := readCollection(filepath.Join(s.dir, "comments.json"), &comments); err != nil {
		return err
	}
	for i := range comments {
		c := comments[i]
		s.comments[c.ID] = &c
		s.commentOrder = append(s.commentOrder, c.ID)
	}
	return nil
}

func readCollection(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, out)
}

func writeCollection(dir, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}

// saveUsers, savePosts and saveComments must be called with the write lock
// held.
func (s *FileStore) saveUsers() error {
	stored := make([]storedUser, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		u := s.users[id]
		stored = append(stored, storedUser{User: *u, Password: u.Password})
	}
	return writeCollection(s.dir, "users.json", stored)
}

func (s *FileStore) savePosts() error {
	posts := make([]models.Post, 0, len(s.postOrder))
	for _, id := range s.postOrder {
		posts = append(posts, *s.posts[id])
	}
	return writeCollection(s.dir, "posts.json", posts)
}

func (s *FileStore) saveComments() error {
	comments := make([]models.Comment, 0, len(s.commentOrder))
	for _, id := range s.commentOrder {
		comments = append(comments, *s.comments[id])
	}
	return writeCollection(s.dir, "comments.json", comments)
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Followers = append([]string{}, u.Followers...)
	c.Following = append([]string{}, u.Following...)
	c.Posts = append([]string{}, u.Posts...)
	return &c
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Tags = append([]string{}, p.Tags...)
	c.Likes = append([]string{}, p.Likes...)
	c.Comments = append([]string{}, p.Comments...)
	return &c
}

func cloneComment(cm *models.Comment) *models.Comment {
	c := *cm
	c.Likes = append([]string{}, cm.Likes...)
	c.Replies = append([]models.Reply{}, cm.Replies...)
	return &c
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// --- users ---

type fileUserRepo struct{ s *FileStore }

func (r *fileUserRepo) Create(_ context.Context, user *models.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	rec := cloneUser(user)
	s.users[rec.ID] = rec
	s.userOrder = append(s.userOrder, rec.ID)
	return s.saveUsers()
}

func (r *fileUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *fileUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findFirst(func(u *models.User) bool { return u.Email == email })
}

func (r *fileUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.findFirst(func(u *models.User) bool { return u.Username == username })
}

func (r *fileUserRepo) findFirst(match func(*models.User) bool) (*models.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.userOrder {
		if match(s.users[id]) {
			return cloneUser(s.users[id]), nil
		}
	}
	return nil, ErrNotFound
}

func (r *fileUserRepo) Update(_ context.Context, user *models.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	rec.Username = user.Username
	rec.Email = user.Email
	rec.Password = user.Password
	rec.Bio = user.Bio
	rec.ProfilePicture = user.ProfilePicture
	return s.saveUsers()
}

func (r *fileUserRepo) Search(_ context.Context, query string, limit int) ([]models.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	results := []models.User{}
	for _, id := range s.userOrder {
		u := s.users[id]
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.Bio), q) {
			results = append(results, *cloneUser(u))
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (r *fileUserRepo) Suggestions(_ context.Context, excludeIDs []string, limit int) ([]models.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []models.User{}
	for _, id := range s.userOrder {
		if containsString(excludeIDs, id) {
			continue
		}
		results = append(results, *cloneUser(s.users[id]))
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// --- follows ---

type fileFollowRepo struct{ s *FileStore }

func (r *fileFollowRepo) Follow(_ context.Context, followerID, targetID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	follower, ok := s.users[followerID]
	if !ok {
		return ErrNotFound
	}
	target, ok := s.users[targetID]
	if !ok {
		return ErrNotFound
	}
	if containsString(follower.Following, targetID) {
		return ErrAlreadyFollowing
	}

	// Both sides live in the same collection file, so one commit covers the
	// whole edge.
	follower.Following = append(follower.Following, targetID)
	target.Followers = append(target.Followers, followerID)
	return s.saveUsers()
}

func (r *fileFollowRepo) Unfollow(_ context.Context, followerID, targetID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	follower, ok := s.users[followerID]
	if !ok {
		return ErrNotFound
	}
	target, ok := s.users[targetID]
	if !ok {
		return ErrNotFound
	}
	follower.Following = removeString(follower.Following, targetID)
	target.Followers = removeString(target.Followers, followerID)
	return s.saveUsers()
}

func (r *fileFollowRepo) IsFollowing(_ context.Context, followerID, targetID string) (bool, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	follower, ok := s.users[followerID]
	if !ok {
		return false, nil
	}
	return containsString(follower.Following, targetID), nil
}

func (r *fileFollowRepo) FollowerIDs(_ context.Context, userID string) ([]string, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]string{}, u.Followers...), nil
}

func (r *fileFollowRepo) FollowingIDs(_ context.Context, userID string) ([]string, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]string{}, u.Following...), nil
}

// --- posts ---

type filePostRepo struct{ s *FileStore }

func (r *filePostRepo) Create(_ context.Context, post *models.Post) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	post.CreatedAt = time.Now()
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []string{}
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	rec := clonePost(post)
	s.posts[rec.ID] = rec
	s.postOrder = append(s.postOrder, rec.ID)
	if err := s.savePosts(); err != nil {
		return err
	}

	if author, ok := s.users[rec.UserID]; ok {
		author.Posts = append(author.Posts, rec.ID)
		return s.saveUsers()
	}
	return nil
}

func (r *filePostRepo) GetByID(_ context.Context, id string) (*models.Post, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePost(p), nil
}

func (r *filePostRepo) Update(_ context.Context, post *models.Post) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.posts[post.ID]
	if !ok {
		return ErrNotFound
	}
	rec.Caption = post.Caption
	rec.Tags = append([]string{}, post.Tags...)
	rec.Location = post.Location
	return s.savePosts()
}

func (r *filePostRepo) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	s.postOrder = removeString(s.postOrder, id)
	if err := s.savePosts(); err != nil {
		return err
	}

	if author, ok := s.users[p.UserID]; ok {
		author.Posts = removeString(author.Posts, id)
		return s.saveUsers()
	}
	return nil
}

func (r *filePostRepo) ToggleLike(_ context.Context, postID, userID string) ([]string, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return nil, ErrNotFound
	}
	if containsString(p.Likes, userID) {
		p.Likes = removeString(p.Likes, userID)
	} else {
		p.Likes = append(p.Likes, userID)
	}
	if err := s.savePosts(); err != nil {
		return nil, err
	}
	return append([]string{}, p.Likes...), nil
}

func (r *filePostRepo) ListByUser(_ context.Context, userID string) ([]models.Post, error) {
	return r.list(func(p *models.Post) bool { return p.UserID == userID }, 0)
}

func (r *filePostRepo) ListByUsers(_ context.Context, userIDs []string) ([]models.Post, error) {
	return r.list(func(p *models.Post) bool { return containsString(userIDs, p.UserID) }, 0)
}

func (r *filePostRepo) ListRecent(_ context.Context, limit int) ([]models.Post, error) {
	return r.list(func(*models.Post) bool { return true }, limit)
}

// list walks the insertion order backwards, so results are newest first
func (r *filePostRepo) list(match func(*models.Post) bool, limit int) ([]models.Post, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []models.Post{}
	for i := len(s.postOrder) - 1; i >= 0; i-- {
		p := s.posts[s.postOrder[i]]
		if !match(p) {
			continue
		}
		results = append(results, *clonePost(p))
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (r *filePostRepo) AddCommentRef(_ context.Context, postID, commentID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return ErrNotFound
	}
	p.Comments = append(p.Comments, commentID)
	return s.savePosts()
}

func (r *filePostRepo) RemoveCommentRef(_ context.Context, postID, commentID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return nil
	}
	p.Comments = removeString(p.Comments, commentID)
	return s.savePosts()
}

// --- comments ---

type fileCommentRepo struct{ s *FileStore }

func (r *fileCommentRepo) Create(_ context.Context, comment *models.Comment) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedAt = time.Now()
	if comment.Likes == nil {
		comment.Likes = []string{}
	}
	if comment.Replies == nil {
		comment.Replies = []models.Reply{}
	}

	rec := cloneComment(comment)
	s.comments[rec.ID] = rec
	s.commentOrder = append(s.commentOrder, rec.ID)
	return s.saveComments()
}

func (r *fileCommentRepo) GetByID(_ context.Context, id string) (*models.Comment, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneComment(c), nil
}

func (r *fileCommentRepo) Update(_ context.Context, comment *models.Comment) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.comments[comment.ID]
	if !ok {
		return ErrNotFound
	}
	rec.Content = comment.Content
	return s.saveComments()
}

func (r *fileCommentRepo) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return ErrNotFound
	}
	delete(s.comments, id)
	s.commentOrder = removeString(s.commentOrder, id)
	return s.saveComments()
}

func (r *fileCommentRepo) ListByPost(_ context.Context, postID string) ([]models.Comment, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []models.Comment{}
	for _, id := range s.commentOrder {
		c := s.comments[id]
		if c.PostID == postID {
			results = append(results, *cloneComment(c))
		}
	}
	return results, nil
}

func (r *fileCommentRepo) ListByPosts(_ context.Context, postIDs []string) ([]models.Comment, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []models.Comment{}
	for _, id := range s.commentOrder {
		c := s.comments[id]
		if containsString(postIDs, c.PostID) {
			results = append(results, *cloneComment(c))
		}
	}
	return results, nil
}

func (r *fileCommentRepo) DeleteByPost(_ context.Context, postID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.commentOrder[:0]
	removed := false
	for _, id := range s.commentOrder {
		if s.comments[id].PostID == postID {
			delete(s.comments, id)
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	s.commentOrder = kept
	if !removed {
		return nil
	}
	return s.saveComments()
}

func (r *fileCommentRepo) ToggleLike(_ context.Context, commentID, userID string) ([]string, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok {
		return nil, ErrNotFound
	}
	if containsString(c.Likes, userID) {
		c.Likes = removeString(c.Likes, userID)
	} else {
		c.Likes = append(c.Likes, userID)
	}
	if err := s.saveComments(); err != nil {
		return nil, err
	}
	return append([]string{}, c.Likes...), nil
}

func (r *fileCommentRepo) AddReply(_ context.Context, commentID string, reply models.Reply) (*models.Comment, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok {
		return nil, ErrNotFound
	}
	c.Replies = append(c.Replies, reply)
	if err := s.saveComments(); err != nil {
		return nil, err
	}
	return cloneComment(c), nil
}
