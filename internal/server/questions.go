// internal/server/questions.go
//
// 問答串與理解度投票的 handler。

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"codeshare/internal/classroom"
)

// listQuestions 處理 GET /sessions/{sid}/questions。
func (s *Server) listQuestions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Questions())
}

// askQuestion 處理 POST /sessions/{sid}/questions。
func (s *Server) askQuestion(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if !decode(w, r, &req, false) {
		return
	}
	m, err := sess.Ask(req.Text, req.User.toUser())
	if err != nil {
		writeErr(w, err, errStatus(err))
		return
	}
	messagesPosted.WithLabelValues("question").Inc()
	writeJSON(w, http.StatusCreated, m)
	s.afterMutation()
}

// replyQuestion 處理 POST /sessions/{sid}/questions/{qid}/replies。
func (s *Server) replyQuestion(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if !decode(w, r, &req, false) {
		return
	}
	m, err := sess.Reply(chi.URLParam(r, "qid"), req.Text, req.User.toUser())
	if err != nil {
		writeErr(w, err, errStatus(err))
		return
	}
	messagesPosted.WithLabelValues("reply").Inc()
	writeJSON(w, http.StatusCreated, m)
	s.afterMutation()
}

// tally 處理 GET /sessions/{sid}/vote。
func (s *Server) tally(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Tally())
}

// castVote 處理 POST /sessions/{sid}/vote；同一投票者重投會取代前一票。
func (s *Server) castVote(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req voteRequest
	if !decode(w, r, &req, false) {
		return
	}
	t, err := sess.Vote(req.Voter, classroom.Choice(req.Choice))
	if err != nil {
		writeErr(w, err, errStatus(err))
		return
	}
	votesCast.WithLabelValues(req.Choice).Inc()
	writeJSON(w, http.StatusOK, t)
	s.afterMutation()
}

// resetVote 處理 DELETE /sessions/{sid}/vote → 清空票數並開始新一輪（body 可省略）。
func (s *Server) resetVote(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req resetPollRequest
	if !decode(w, r, &req, true) {
		return
	}
	t := sess.ResetPoll(req.Prompt)
	s.logger.Info("poll reset", "session", sess.ID, "prompt", t.Prompt)
	writeJSON(w, http.StatusOK, t)
	s.afterMutation()
}
