package db

import (
	"context"
	"strings"

	"college_library_backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Genres

func (r *Repo) ListGenres(ctx context.Context) ([]models.Genre, error) {
	var gs []models.Genre
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&gs).Error
	return gs, err
}

func (r *Repo) CreateGenre(ctx context.Context, name string) (*models.Genre, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Genre{}).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrConflict
	}
	g := &models.Genre{ID: uuid.NewString(), Name: name}
	return g, r.DB.WithContext(ctx).Create(g).Error
}

func (r *Repo) RenameGenre(ctx context.Context, id, name string) (*models.Genre, error) {
	res := r.DB.WithContext(ctx).Model(&models.Genre{}).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var g models.Genre
	if err := r.DB.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, asNotFound(err)
	}
	return &g, nil
}

// Books

type CreateBookInput struct {
	Title            string
	Author           string
	Publisher        string
	Copies           int
	GenreID          string
	IsEbookAvailable bool
	EbookURL         *string
}

// CreateBook 建书 + 批量建实体副本，同一事务，部分失败整体回滚
func (r *Repo) CreateBook(ctx context.Context, in CreateBookInput) (*models.Book, []models.BookCopy, error) {
	book := &models.Book{
		ID:               uuid.NewString(),
		Title:            in.Title,
		Author:           in.Author,
		Publisher:        in.Publisher,
		Copies:           in.Copies,
		GenreID:          in.GenreID,
		IsEbookAvailable: in.IsEbookAvailable,
	}
	if in.IsEbookAvailable {
		book.EbookURL = in.EbookURL
	}

	copies := make([]models.BookCopy, 0, in.Copies)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Genre{}).Where("id = ?", in.GenreID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		if err := tx.Create(book).Error; err != nil {
			return err
		}
		for i := 0; i < in.Copies; i++ {
			cp := models.BookCopy{
				ID:        uuid.NewString(),
				BookID:    book.ID,
				Condition: models.CopyConditionNew,
				Status:    models.CopyStatusAvailable,
			}
			if err := tx.Create(&cp).Error; err != nil {
				return err
			}
			copies = append(copies, cp)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return book, copies, nil
}

type PagedBooks struct {
	Total int64         `json:"total"`
	Books []models.Book `json:"books"`
}

func (r *Repo) ListBooksPaginated(ctx context.Context, page, size int) (*PagedBooks, error) {
	page, size = clampPage(page, size)

	tx := r.DB.WithContext(ctx).Model(&models.Book{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}
	var books []models.Book
	if err := tx.
		Order("title ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&books).Error; err != nil {
		return nil, err
	}
	return &PagedBooks{Total: total, Books: books}, nil
}

func (r *Repo) SearchBooksByTitle(ctx context.Context, q string) ([]models.Book, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	var books []models.Book
	err := r.DB.WithContext(ctx).
		Where("LOWER(title) LIKE ?", like).
		Order("title ASC").
		Find(&books).Error
	return books, err
}

type BookFilter struct {
	Author           string
	Publisher        string
	MinCopies        int
	GenreID          string
	IsEbookAvailable *bool
}

func (r *Repo) FilterBooks(ctx context.Context, f BookFilter) ([]models.Book, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Book{})
	if s := strings.TrimSpace(f.Author); s != "" {
		tx = tx.Where("LOWER(author) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if s := strings.TrimSpace(f.Publisher); s != "" {
		tx = tx.Where("LOWER(publisher) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if f.MinCopies > 0 {
		tx = tx.Where("copies >= ?", f.MinCopies)
	}
	if f.GenreID != "" {
		tx = tx.Where("genre_id = ?", f.GenreID)
	}
	if f.IsEbookAvailable != nil {
		tx = tx.Where("is_ebook_available = ?", *f.IsEbookAvailable)
	}
	var books []models.Book
	err := tx.Order("title ASC").Find(&books).Error
	return books, err
}

type BookDetails struct {
	Book            models.Book       `json:"book"`
	Genre           *models.Genre     `json:"genre,omitempty"`
	BookCopies      []models.BookCopy `json:"bookCopies"`
	AvailableCopies int               `json:"availableCopies"`
}

func (r *Repo) GetBookDetails(ctx context.Context, bookID string) (*BookDetails, error) {
	var book models.Book
	if err := r.DB.WithContext(ctx).First(&book, "id = ?", bookID).Error; err != nil {
		return nil, asNotFound(err)
	}
	var copies []models.BookCopy
	if err := r.DB.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("created_at ASC").
		Find(&copies).Error; err != nil {
		return nil, err
	}
	available := 0
	for _, cp := range copies {
		if cp.Status == models.CopyStatusAvailable {
			available++
		}
	}
	d := &BookDetails{Book: book, BookCopies: copies, AvailableCopies: available}
	var g models.Genre
	if err := r.DB.WithContext(ctx).First(&g, "id = ?", book.GenreID).Error; err == nil {
		d.Genre = &g
	}
	return d, nil
}

func (r *Repo) ListBookCopies(ctx context.Context, bookID string) ([]models.BookCopy, error) {
	var copies []models.BookCopy
	err := r.DB.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("created_at ASC").
		Find(&copies).Error
	return copies, err
}

// AvailableCopyRow 货架视图：可借副本 + 所属书名
type AvailableCopyRow struct {
	CopyID    string `json:"copyId"`
	BookID    string `json:"bookId"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Condition string `json:"condition"`
}

func (r *Repo) ListAvailableCopies(ctx context.Context, q string) ([]AvailableCopyRow, error) {
	tx := r.DB.WithContext(ctx).
		Table("book_copies bc").
		Select("bc.id AS copy_id, b.id AS book_id, b.title, b.author, bc.condition").
		Joins("JOIN books b ON b.id = bc.book_id").
		Where("bc.status = ?", models.CopyStatusAvailable)
	if s := strings.TrimSpace(q); s != "" {
		tx = tx.Where("LOWER(b.title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	var rows []AvailableCopyRow
	err := tx.Order("b.title ASC").Scan(&rows).Error
	return rows, err
}
