// controllers/book_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"college_library_backend/app"
	"college_library_backend/db"

	"github.com/gin-gonic/gin"
)

type BookController struct{ *Srv }

func NewBookController(s *Srv) *BookController { return &BookController{Srv: s} }

// POST /api/books  管理员录入一本书 + 批量建副本
func (bc *BookController) CreateBook(c *gin.Context) {
	var in struct {
		Title            string  `json:"title" binding:"required,min=3"`
		Author           string  `json:"author" binding:"required,min=3"`
		Publisher        string  `json:"publisher"`
		Copies           int     `json:"copies" binding:"required,min=1"`
		GenreID          string  `json:"genreId" binding:"required"`
		IsEbookAvailable bool    `json:"isEbookAvailable"`
		EbookURL         *string `json:"ebookUrl" binding:"omitempty,url"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.IsEbookAvailable && (in.EbookURL == nil || *in.EbookURL == "") {
		c.JSON(http.StatusBadRequest, app.H{"error": "ebookUrl is required when isEbookAvailable is set"})
		return
	}

	book, copies, err := bc.Repo.CreateBook(c.Request.Context(), db.CreateBookInput{
		Title:            in.Title,
		Author:           in.Author,
		Publisher:        in.Publisher,
		Copies:           in.Copies,
		GenreID:          in.GenreID,
		IsEbookAvailable: in.IsEbookAvailable,
		EbookURL:         in.EbookURL,
	})
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"book": book, "bookCopies": copies})
}

// GET /api/books?page=&size=
func (bc *BookController) ListBooks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := bc.Repo.ListBooksPaginated(c.Request.Context(), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/books/search?q=
func (bc *BookController) SearchBooks(c *gin.Context) {
	books, err := bc.Repo.SearchBooksByTitle(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, app.H{"books": books})
}

// GET /api/books/filter?author=&publisher=&minCopies=&genreId=&ebook=
func (bc *BookController) FilterBooks(c *gin.Context) {
	f := db.BookFilter{
		Author:    c.Query("author"),
		Publisher: c.Query("publisher"),
		GenreID:   c.Query("genreId"),
	}
	if v := c.Query("minCopies"); v != "" {
		f.MinCopies, _ = strconv.Atoi(v)
	}
	if v := c.Query("ebook"); v != "" {
		b := v == "true"
		f.IsEbookAvailable = &b
	}

	books, err := bc.Repo.FilterBooks(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, app.H{"books": books})
}

// GET /api/books/:id
func (bc *BookController) GetBook(c *gin.Context) {
	details, err := bc.Repo.GetBookDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// GET /api/books/:id/copies
func (bc *BookController) ListCopies(c *gin.Context) {
	copies, err := bc.Repo.ListBookCopies(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, app.H{"copies": copies})
}

// GET /api/copies/available?q=
func (bc *BookController) ListAvailableCopies(c *gin.Context) {
	rows, err := bc.Repo.ListAvailableCopies(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, app.H{"copies": rows})
}

// Genres

// GET /api/genres
func (bc *BookController) ListGenres(c *gin.Context) {
	gs, err := bc.Repo.ListGenres(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, app.H{"genres": gs})
}

// POST /api/genres
func (bc *BookController) CreateGenre(c *gin.Context) {
	var in struct {
		Name string `json:"name" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	g, err := bc.Repo.CreateGenre(c.Request.Context(), in.Name)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"genre": g})
}

// PUT /api/genres/:id
func (bc *BookController) RenameGenre(c *gin.Context) {
	var in struct {
		Name string `json:"name" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	g, err := bc.Repo.RenameGenre(c.Request.Context(), c.Param("id"), in.Name)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"genre": g})
}
