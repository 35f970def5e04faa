package docserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/danieljhkim/docmerge/internal/document"
	"github.com/danieljhkim/docmerge/internal/store"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleList(c *gin.Context) {
	infos, err := s.store.ListDocuments(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Documents: infos})
}

func (s *Server) handleGet(c *gin.Context) {
	doc, err := s.store.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// handleImport stores the posted document. ?overwrite=true replaces an
// existing one.
func (s *Server) handleImport(c *gin.Context) {
	var doc document.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		s.badRequest(c, fmt.Errorf("invalid document body: %w", err))
		return
	}

	overwrite := false
	if v := c.Query("overwrite"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.badRequest(c, fmt.Errorf("invalid overwrite flag %q", v))
			return
		}
		overwrite = b
	}

	info, err := s.store.PutDocument(c.Request.Context(), &doc, overwrite)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.store.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, fmt.Errorf("invalid batch body: %w", err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.badRequest(c, err)
		return
	}

	receipt, err := s.store.ExecuteBatch(c.Request.Context(), c.Param("id"), req.Batch())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (s *Server) handleAnnotate(c *gin.Context) {
	var req store.NewAnnotation
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, fmt.Errorf("invalid annotation body: %w", err))
		return
	}

	ann, err := s.store.CreateAnnotation(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ann)
}
