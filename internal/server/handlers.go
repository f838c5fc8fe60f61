package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/codeclock/internal/domain"
	"github.com/alexanderramin/codeclock/internal/importer"
	"github.com/alexanderramin/codeclock/internal/ledger"
	"github.com/alexanderramin/codeclock/internal/summary"
	"github.com/alexanderramin/codeclock/internal/tracker"
)

func (s *Server) input(st tracker.Status, entries []domain.TimeEntry) summary.Input {
	return summary.Input{
		Entries:           entries,
		Live:              st.Live(),
		Now:               s.clock.Now(),
		InactivityTimeout: st.Config.InactivityTimeout,
	}
}

// snapshotAttempts bounds how often a read torn by a concurrent flush is
// retried before the live session is left out.
const snapshotAttempts = 3

// current reads the ledger and then the tracker. When the ledger already
// holds a write whose re-anchored session is not published yet, the live
// session would repeat that time, so the read is retried and finally
// answered without the live session.
func (s *Server) current() (tracker.Status, summary.Input) {
	var (
		st      tracker.Status
		entries []domain.TimeEntry
		adds    uint64
	)
	for range snapshotAttempts {
		entries, adds = s.ledger.Snapshot()
		st = s.tracker.Status()
		if adds <= st.Saved {
			return st, s.input(st, entries)
		}
	}
	in := s.input(st, entries)
	in.Live = nil
	return st, in
}

func (s *Server) status() StatusResponse {
	st, in := s.current()

	resp := StatusResponse{
		State:         st.State,
		Active:        st.IsActive(),
		AwaitingFocus: st.AwaitingFocus,
		Project:       st.CurrentProject(),
		Branch:        st.CurrentBranch(),
		PendingWrites: st.PendingWrites,
		Totals:        summary.ComputeTotals(in),
	}
	if st.Session != nil {
		started, last := st.Session.StartedAt, st.Session.LastActivityAt
		resp.StartedAt = &started
		resp.LastActivityAt = &last
		resp.ProjectToday = summary.CurrentProjectToday(in, st.Session.Project)
	}
	return resp
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.status())
}

func (s *Server) handleTotals(c *gin.Context) {
	_, in := s.current()
	c.JSON(http.StatusOK, summary.ComputeTotals(in))
}

func queryFrom(c *gin.Context) ledger.Query {
	return ledger.Query{
		StartDate: c.Query("start"),
		EndDate:   c.Query("end"),
		Project:   c.Query("project"),
		Branch:    c.Query("branch"),
	}
}

// handleSummary breaks down the ledger, optionally filtered. The live
// session is only folded in when no filter is given.
func (s *Server) handleSummary(c *gin.Context) {
	q := queryFrom(c)
	if q == (ledger.Query{}) {
		_, in := s.current()
		c.JSON(http.StatusOK, summary.Build(in))
		return
	}
	in := s.input(s.tracker.Status(), s.ledger.Search(q))
	in.Live = nil
	c.JSON(http.StatusOK, summary.Build(in))
}

func (s *Server) handleEntries(c *gin.Context) {
	c.JSON(http.StatusOK, toEntries(s.ledger.Search(queryFrom(c))))
}

func (s *Server) handleBranches(c *gin.Context) {
	project := c.Param("project")
	c.JSON(http.StatusOK, BranchesResponse{Project: project, Branches: s.ledger.BranchesByProject(project)})
}

func (s *Server) command(run func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := run(c.Request.Context()); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, s.status())
	}
}

func (s *Server) handleResetToday(c *gin.Context) {
	n, err := s.ledger.ResetToday(c.Request.Context(), s.clock.Now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ResetResponse{Removed: n})
}

func (s *Server) handleResetAll(c *gin.Context) {
	var req ResetAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if err := ledger.CheckConfirmation(req.Confirm); err != nil {
		s.fail(c, err)
		return
	}
	n, err := s.ledger.ResetAll(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ResetResponse{Removed: n})
}

func (s *Server) handleImport(c *gin.Context) {
	rows, err := importer.Parse(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	n, err := importer.Run(c.Request.Context(), s.ledger, rows)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ImportResponse{Imported: n})
}

func (s *Server) handleReminderTest(c *gin.Context) {
	resp := s.reminders.TriggerTest(c.Request.Context())
	c.JSON(http.StatusOK, ReminderTestResponse{Response: resp})
}
