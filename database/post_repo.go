package database

import (
	"time"

	"github.com/lonlait/blogicum/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db}
}

// List returns one page of the posts selected by q. The requested page is clamped
// into the valid range.
func (r *PostRepo) List(q PostQuery, paginate Paginate) (*Pagination[models.Post], error) {
	base := q.apply(r.db.Model(&models.Post{})).Session(&gorm.Session{})

	var numItems int64
	if err := base.Count(&numItems).Error; err != nil {
		return nil, err
	}

	paginate.SetNumItems(numItems)
	paginate.Clamp()

	var posts []models.Post
	err := newestFirst(withRelations(base.Select(q.columns()))).
		Limit(paginate.GetLimit()).
		Offset(paginate.Offset()).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	return MakePagination(posts, paginate), nil
}

// ListPublished is the index listing.
func (r *PostRepo) ListPublished(paginate Paginate, now time.Time) (*Pagination[models.Post], error) {
	return r.List(PostQuery{
		RequirePublished: true,
		WithCommentCount: true,
		Now:              now,
	}, paginate)
}

// ListByCategory lists the visible posts of one category.
func (r *PostRepo) ListByCategory(category models.Category, paginate Paginate, now time.Time) (*Pagination[models.Post], error) {
	return r.List(PostQuery{
		CategoryID:       category.ID,
		RequirePublished: true,
		WithCommentCount: true,
		Now:              now,
	}, paginate)
}

// ListForProfile lists the posts of profile. The owner sees everything they wrote,
// other viewers only what is visible.
func (r *PostRepo) ListForProfile(profile models.User, viewer *models.User, paginate Paginate, now time.Time) (*Pagination[models.Post], error) {
	return r.List(PostQuery{
		AuthorID:         profile.ID,
		RequirePublished: viewer == nil || viewer.ID != profile.ID,
		WithCommentCount: true,
		Now:              now,
	}, paginate)
}

// FindByID returns a post regardless of its visibility.
func (r *PostRepo) FindByID(id uint) (*models.Post, error) {
	return r.first(PostQuery{}, id)
}

// FindForViewer returns the post when viewer may see it. Authors always see their
// own posts; everyone else gets gorm.ErrRecordNotFound for hidden posts, exactly as
// for missing ones.
func (r *PostRepo) FindForViewer(id uint, viewer *models.User, now time.Time) (*models.Post, error) {
	post, err := r.first(PostQuery{}, id)
	if err != nil {
		return nil, err
	}

	if viewer != nil && viewer.ID == post.AuthorID {
		return post, nil
	}

	return r.first(PostQuery{RequirePublished: true, Now: now}, id)
}

func (r *PostRepo) first(q PostQuery, id uint) (*models.Post, error) {
	var post models.Post
	err := withRelations(q.apply(r.db.Model(&models.Post{})).Select(q.columns())).
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Add inserts a new post into the database
func (r *PostRepo) Add(post *models.Post) error {
	post.PubDate = post.PubDate.UTC()
	return r.db.Omit(clause.Associations).Create(post).Error
}

// Update writes every editable column of post.
func (r *PostRepo) Update(post *models.Post) error {
	post.PubDate = post.PubDate.UTC()
	return r.db.Model(post).
		Omit(clause.Associations).
		Select("title", "text", "image", "pub_date", "is_published", "category_id", "location_id").
		Updates(post).Error
}

// Delete removes a post by id; its comments are removed by the foreign key cascade.
func (r *PostRepo) Delete(id uint) error {
	return r.db.Delete(&models.Post{}, id).Error
}
