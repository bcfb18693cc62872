package http

import (
	"net/http"
	"strconv"

	"budgetboard/internal/core"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Role core.Role `json:"role"`
	Name string    `json:"name"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	id, err := s.session.Login(r.Context(), sanitizeInput(req.Username), req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Role: id.Role, Name: id.Name})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.session.Logout()
	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	Username    string `json:"username"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.session.ChangePassword(r.Context(), sanitizeInput(req.Username), req.OldPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionResponse struct {
	Authenticated bool      `json:"authenticated"`
	Role          core.Role `json:"role,omitempty"`
	User          string    `json:"user,omitempty"`
	Loading       bool      `json:"loading"`
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: s.session.Authenticated(),
		Role:          s.session.Role(),
		User:          s.session.User(),
		Loading:       s.session.Loading(),
	})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects := core.FilterByGroup(s.session.Projects(), r.URL.Query().Get("group"))
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleAddProject(w http.ResponseWriter, r *http.Request) {
	var p core.Project
	if err := decodeJSON(r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if p.Status == "" {
		p.Status = core.StatusActive
	}

	if err := s.session.AddProject(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid project id"})
		return
	}

	var p core.Project
	if err := decodeJSON(r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	p.ID = id

	if err := s.session.UpdateProject(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid project id"})
		return
	}

	if err := s.session.DeleteProject(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGroups(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, core.Groups(s.session.Projects()))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Expenses())
}

type recordExpenseRequest struct {
	ProjectID int64      `json:"projectId"`
	Amount    core.Money `json:"amount"`
	Date      string     `json:"date"`
	Item      string     `json:"item"`
	Note      string     `json:"note"`
}

func (s *Server) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	var req recordExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	e, err := s.session.RecordExpense(r.Context(), req.ProjectID, req.Amount, req.Date, sanitizeInput(req.Item), sanitizeInput(req.Note))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleListLogs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Logs())
}

type summaryResponse struct {
	Total  core.Summary `json:"total"`
	Series struct {
		First  core.Summary `json:"pj1"`
		Second core.Summary `json:"pj2"`
		Third  core.Summary `json:"pj3"`
	} `json:"series"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	projects := core.FilterByGroup(s.session.Projects(), r.URL.Query().Get("group"))

	var resp summaryResponse
	resp.Total = core.Summarize(projects)
	series := core.GroupBySeries(projects)
	resp.Series.First = core.Summarize(series.First)
	resp.Series.Second = core.Summarize(series.Second)
	resp.Series.Third = core.Summarize(series.Third)
	writeJSON(w, http.StatusOK, resp)
}

type spendingRow struct {
	core.Project
	Remaining core.Money `json:"remaining"`
}

type spendingReportResponse struct {
	Rows   []spendingRow `json:"rows"`
	Totals core.Summary  `json:"totals"`
}

// handleSpendingReport returns projects with nonzero spending plus grand
// totals, the input for the distribution chart and the export view.
func (s *Server) handleSpendingReport(w http.ResponseWriter, r *http.Request) {
	projects := core.FilterByGroup(s.session.Projects(), r.URL.Query().Get("group"))
	active := core.WithSpending(projects)

	resp := spendingReportResponse{
		Rows:   make([]spendingRow, 0, len(active)),
		Totals: core.Summarize(projects),
	}
	for _, p := range active {
		resp.Rows = append(resp.Rows, spendingRow{Project: p, Remaining: p.Remaining()})
	}
	writeJSON(w, http.StatusOK, resp)
}

type monthlyReportResponse struct {
	FiscalEndYear int                `json:"fiscalEndYear"`
	Months        []core.MonthBucket `json:"months"`
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	fy := s.fiscal()
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid year"})
			return
		}
		fy = core.FiscalYear{EndYear: y}
	}

	writeJSON(w, http.StatusOK, monthlyReportResponse{
		FiscalEndYear: fy.EndYear,
		Months:        core.BucketByMonth(fy, s.session.Expenses()),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Refresh(r.Context()); err != nil {
		// Degraded, not failed: the session kept serving the merged view.
		writeJSON(w, http.StatusOK, map[string]string{"status": "degraded", "detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
