package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	api "github.com/mind-engage/quizplay/internal/api/http"
	auth "github.com/mind-engage/quizplay/internal/auth/middleware"
	"github.com/mind-engage/quizplay/internal/db"
	"github.com/mind-engage/quizplay/internal/play"
	"github.com/mind-engage/quizplay/internal/quiz"
	"github.com/mind-engage/quizplay/internal/scores"
	"github.com/mind-engage/quizplay/internal/session"
	"github.com/mind-engage/quizplay/internal/storage"
	"github.com/mind-engage/quizplay/internal/users"
)

type env struct {
	srv     *httptest.Server
	auth    *auth.AuthService
	users   *users.SQLStore
	quizzes *quiz.SQLStore
	blobs   *storage.FSStore
	answers map[int64]string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	h, err := db.Open(ctx, db.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	bs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)

	e := &env{
		auth:    auth.NewAuthService("test-secret"),
		users:   users.NewSQLStore(h),
		quizzes: quiz.NewSQLStore(h),
		blobs:   bs,
		answers: map[int64]string{},
	}
	r := chi.NewRouter()
	api.Mount(r, api.Deps{
		Auth:    e.auth,
		Quizzes: e.quizzes,
		Users:   e.users,
		Blobs:   bs,
		Play: api.Play{
			Engine:     play.NewEngine(e.quizzes, play.WithRand(rand.New(rand.NewSource(1)))),
			Sessions:   session.NewMemoryStore(),
			Reconciler: scores.NewReconciler(e.users),
		},
		SessionTTL: time.Hour,
		Ready:      h.PingContext,
	})
	e.srv = httptest.NewServer(r)
	t.Cleanup(e.srv.Close)
	return e
}

func (e *env) seedQuizzes(t *testing.T, author string, pairs ...string) []int64 {
	t.Helper()
	var ids []int64
	for i := 0; i+1 < len(pairs); i += 2 {
		q, err := e.quizzes.CreateQuiz(context.Background(), quiz.Quiz{Question: pairs[i], Answer: pairs[i+1], AuthorID: author})
		require.NoError(t, err)
		e.answers[q.ID] = q.Answer
		ids = append(ids, q.ID)
	}
	return ids
}

// user creates an account with the given role and returns its id and a token.
func (e *env) user(t *testing.T, name, role string) (string, string) {
	t.Helper()
	u, err := e.users.Create(context.Background(), users.User{Username: name, PasswordHash: "x", Role: role})
	require.NoError(t, err)
	tok, err := e.auth.IssueJWT(u.ID, role)
	require.NoError(t, err)
	return u.ID, tok
}

func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// call sends body as JSON (or as-is for io.Reader with ctype) and decodes the
// response into out when non-nil.
func call(t *testing.T, c *http.Client, method, u, token string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	ctype := "application/json"
	switch b := body.(type) {
	case nil:
	case url.Values:
		rd = strings.NewReader(b.Encode())
		ctype = "application/x-www-form-urlencoded"
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, u, rd)
	require.NoError(t, err)
	if rd != nil {
		req.Header.Set("Content-Type", ctype)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type drawResp struct {
	Quiz       quiz.Quiz   `json:"quiz"`
	Options    []string    `json:"options"`
	Score      int         `json:"score"`
	Completed  bool        `json:"completed"`
	FinalScore int         `json:"final_score"`
	User       *users.User `json:"user"`
}

type checkResp struct {
	Correct     bool        `json:"correct"`
	ScoreBefore int         `json:"score_before"`
	ScoreAfter  int         `json:"score_after"`
	RunOver     bool        `json:"run_over"`
	User        *users.User `json:"user"`
}

func TestPlay_NormalRunCompletesAndFlushes(t *testing.T) {
	e := newEnv(t)
	e.seedQuizzes(t, "seed", "Capital of Italy", "Rome", "Capital of France", "Paris", "Capital of Spain", "Madrid")
	uid, tok := e.user(t, "ana", "student")
	c := newClient(t)

	seen := map[int64]bool{}
	for i := 0; i < 3; i++ {
		var d drawResp
		require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/play/normal", tok, nil, &d))
		require.False(t, d.Completed)
		require.Empty(t, d.Quiz.Answer, "answers never reach players")
		require.Equal(t, i, d.Score)
		require.False(t, seen[d.Quiz.ID], "quiz repeated within a round")
		seen[d.Quiz.ID] = true

		var res checkResp
		path := e.srv.URL + "/play/normal/" + strconv.FormatInt(d.Quiz.ID, 10) + "/check"
		answer := "  " + strings.ToUpper(e.answers[d.Quiz.ID]) + " "
		require.Equal(t, http.StatusOK, call(t, c, "POST", path, tok, map[string]string{"answer": answer}, &res))
		require.True(t, res.Correct)
		require.Equal(t, i+1, res.ScoreAfter)
		require.False(t, res.RunOver)
	}

	var done drawResp
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/play/normal", tok, nil, &done))
	require.True(t, done.Completed)
	require.Equal(t, 3, done.FinalScore)
	require.NotNil(t, done.User)
	require.Equal(t, 3, done.User.ScoreNormal)

	var u users.User
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/users/"+uid, tok, nil, &u))
	require.Equal(t, 3, u.ScoreNormal)
	require.Equal(t, 3, u.Score)

	// the round was reset by completion
	var again drawResp
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/play/normal", tok, nil, &again))
	require.False(t, again.Completed)
	require.Zero(t, again.Score)
}

func TestPlay_WrongAnswerEndsRun(t *testing.T) {
	e := newEnv(t)
	e.seedQuizzes(t, "seed", "2+2", "4", "3+3", "6")
	uid, tok := e.user(t, "bo", "student")
	c := newClient(t)

	var d drawResp
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/play/normal", tok, nil, &d))
	path := e.srv.URL + "/play/normal/" + strconv.FormatInt(d.Quiz.ID, 10) + "/check"
	var res checkResp
	require.Equal(t, http.StatusOK, call(t, c, "POST", path, tok, url.Values{"answer": {e.answers[d.Quiz.ID]}}, &res))
	require.True(t, res.Correct)

	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/play/normal", tok, nil, &d))
	path = e.srv.URL + "/play/normal/" + strconv.FormatInt(d.Quiz.ID, 10) + "/check"
	require.Equal(t, http.StatusOK, call(t, c, "POST", path, tok, url.Values{"answer": {"nope"}}, &res))
	require.False(t, res.Correct)
	require.True(t, res.RunOver)
	require.Equal(t, 1, res.ScoreBefore)
	require.Zero(t, res.ScoreAfter)
	require.NotNil(t, res.User)
	require.Equal(t, 1, res.User.ScoreNormal)

	got, err := e.users.GetUser(context.Background(), uid)
	require.NoError(t, err)
	require.Equal(t, 1, got.Score)
}

func TestPlay_AnonymousAndSessionsAreSeparate(t *testing.T) {
	e := newEnv(t)
	e.seedQuizzes(t, "seed", "a", "1", "b", "2")
	c1, c2 := newClient(t), newClient(t)

	var d drawResp
	require.Equal(t, http.StatusOK, call(t, c1, "GET", e.srv.URL+"/play/normal", "", nil, &d))
	path := e.srv.URL + "/play/normal/" + strconv.FormatInt(d.Quiz.ID, 10) + "/check"
	var res checkResp
	require.Equal(t, http.StatusOK, call(t, c1, "POST", path, "", map[string]string{"answer": e.answers[d.Quiz.ID]}, &res))
	require.Equal(t, 1, res.ScoreAfter)

	var other drawResp
	require.Equal(t, http.StatusOK, call(t, c2, "GET", e.srv.URL+"/play/normal", "", nil, &other))
	require.Zero(t, other.Score)

	// multiple-mode state is independent of normal mode
	var m drawResp
	require.Equal(t, http.StatusOK, call(t, c1, "GET", e.srv.URL+"/play/multiple", "", nil, &m))
	require.Zero(t, m.Score)

	require.Equal(t, http.StatusNotFound, call(t, c1, "GET", e.srv.URL+"/play/hard", "", nil, nil))
	require.Equal(t, http.StatusBadRequest, call(t, c1, "POST", e.srv.URL+"/play/normal/abc/check", "", map[string]string{"answer": "x"}, nil))
	require.Equal(t, http.StatusNotFound, call(t, c1, "POST", e.srv.URL+"/play/normal/999/check", "", map[string]string{"answer": "x"}, nil))
}

func TestPlay_MultipleModeOptions(t *testing.T) {
	e := newEnv(t)
	e.seedQuizzes(t, "seed", "q1", "red", "q2", "green", "q3", "blue", "q4", "black", "q5", "white")
	c := newClient(t)

	var d drawResp
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/play/multiple", "", nil, &d))
	require.Len(t, d.Options, 4)
	require.Contains(t, d.Options, e.answers[d.Quiz.ID])

	var res checkResp
	path := e.srv.URL + "/play/multiple/" + strconv.FormatInt(d.Quiz.ID, 10) + "/check"
	require.Equal(t, http.StatusOK, call(t, c, "POST", path, "", map[string]string{"option": e.answers[d.Quiz.ID]}, &res))
	require.True(t, res.Correct)

	// normal-mode field name is ignored in multiple mode
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/play/multiple", "", nil, &d))
	path = e.srv.URL + "/play/multiple/" + strconv.FormatInt(d.Quiz.ID, 10) + "/check"
	require.Equal(t, http.StatusOK, call(t, c, "POST", path, "", map[string]string{"answer": e.answers[d.Quiz.ID]}, &res))
	require.False(t, res.Correct)
}

func TestScores_PutAndReset(t *testing.T) {
	e := newEnv(t)
	uid, tok := e.user(t, "ana", "student")
	_, otherTok := e.user(t, "bo", "student")
	_, adminTok := e.user(t, "root", "admin")
	c := newClient(t)
	path := e.srv.URL + "/users/" + uid + "/score"

	var u users.User
	require.Equal(t, http.StatusOK, call(t, c, "PUT", path, tok, map[string]int{"score_normal": 5, "score_multiple": 3}, &u))
	require.Equal(t, 8, u.Score)
	require.Equal(t, http.StatusOK, call(t, c, "PUT", path, tok, map[string]int{"score_normal": 4}, &u))
	require.Equal(t, 5, u.ScoreNormal)
	require.Equal(t, http.StatusOK, call(t, c, "PUT", path, tok, map[string]int{"score_multiple": 7}, &u))
	require.Equal(t, 12, u.Score)

	require.Equal(t, http.StatusBadRequest, call(t, c, "PUT", path, tok, map[string]int{"score_normal": -1}, nil))
	require.Equal(t, http.StatusForbidden, call(t, c, "PUT", path, otherTok, map[string]int{"score_normal": 50}, nil))
	require.Equal(t, http.StatusUnauthorized, call(t, c, "PUT", path, "", map[string]int{"score_normal": 50}, nil))
	require.Equal(t, http.StatusNotFound, call(t, c, "PUT", e.srv.URL+"/users/missing/score", adminTok, map[string]int{"score_normal": 1}, nil))

	require.Equal(t, http.StatusForbidden, call(t, c, "POST", path+"/reset", tok, nil, nil))
	require.Equal(t, http.StatusOK, call(t, c, "POST", path+"/reset", adminTok, nil, &u))
	require.Zero(t, u.Score)
	require.Zero(t, u.ScoreMultiple)
}

func TestRanking(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	rec := scores.NewReconciler(e.users)
	for i, name := range []string{"a", "b", "c"} {
		id, _ := e.user(t, name, "student")
		n := (i + 1) * 10
		_, err := rec.Reconcile(ctx, id, scores.ModeScores{Normal: &n})
		require.NoError(t, err)
	}
	c := newClient(t)

	var page struct {
		Total   int                  `json:"total"`
		Pages   int                  `json:"pages"`
		Entries []users.RankingEntry `json:"entries"`
	}
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/ranking?page_size=2", "", nil, &page))
	require.Equal(t, 3, page.Total)
	require.Equal(t, 2, page.Pages)
	require.Len(t, page.Entries, 2)
	require.Equal(t, "c", page.Entries[0].Username)
	require.Equal(t, 1, page.Entries[0].Rank)

	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/ranking?page=2&page_size=2", "", nil, &page))
	require.Len(t, page.Entries, 1)
	require.Equal(t, "a", page.Entries[0].Username)
	require.Equal(t, 3, page.Entries[0].Rank)
}

func TestUsers_RegisterLoginList(t *testing.T) {
	e := newEnv(t)
	c := newClient(t)

	var u users.User
	require.Equal(t, http.StatusCreated, call(t, c, "POST", e.srv.URL+"/users", "", map[string]string{"username": "ana", "password": "secret1"}, &u))
	require.Equal(t, "student", u.Role)
	require.Equal(t, http.StatusConflict, call(t, c, "POST", e.srv.URL+"/users", "", map[string]string{"username": "ana", "password": "secret1"}, nil))
	require.Equal(t, http.StatusBadRequest, call(t, c, "POST", e.srv.URL+"/users", "", map[string]string{"username": "x", "password": "1"}, nil))

	var login struct {
		AccessToken string `json:"access_token"`
		UserID      string `json:"user_id"`
	}
	require.Equal(t, http.StatusOK, call(t, c, "POST", e.srv.URL+"/auth/login", "", map[string]string{"username": "ana", "password": "secret1"}, &login))
	require.Equal(t, u.ID, login.UserID)

	require.Equal(t, http.StatusForbidden, call(t, c, "GET", e.srv.URL+"/users", login.AccessToken, nil, nil))
	_, teacherTok := e.user(t, "tess", "teacher")
	var list []users.User
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/users", teacherTok, nil, &list))
	require.Len(t, list, 2)

	otherID, _ := e.user(t, "zed", "student")
	require.Equal(t, http.StatusForbidden, call(t, c, "GET", e.srv.URL+"/users/"+otherID, login.AccessToken, nil, nil))
}

func TestQuizzes_CRUDAndOwnership(t *testing.T) {
	e := newEnv(t)
	_, teacherTok := e.user(t, "tess", "teacher")
	_, otherTok := e.user(t, "tom", "student")
	_, adminTok := e.user(t, "root", "admin")
	c := newClient(t)

	body := map[string]string{"question": "Largest planet?", "answer": "Jupiter"}
	require.Equal(t, http.StatusUnauthorized, call(t, c, "POST", e.srv.URL+"/quizzes", "", body, nil))
	require.Equal(t, http.StatusBadRequest, call(t, c, "POST", e.srv.URL+"/quizzes", teacherTok, map[string]string{"question": "x"}, nil))

	var q quiz.Quiz
	require.Equal(t, http.StatusCreated, call(t, c, "POST", e.srv.URL+"/quizzes", teacherTok, body, &q))
	path := e.srv.URL + "/quizzes/" + strconv.FormatInt(q.ID, 10)

	var list []quiz.Quiz
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/quizzes?q=planet", "", nil, &list))
	require.Len(t, list, 1)
	require.Empty(t, list[0].Answer)

	var got quiz.Quiz
	require.Equal(t, http.StatusOK, call(t, c, "GET", path, "", nil, &got))
	require.Empty(t, got.Answer)
	require.Equal(t, http.StatusOK, call(t, c, "GET", path, teacherTok, nil, &got))
	require.Equal(t, "Jupiter", got.Answer)

	edit := map[string]string{"question": "Largest planet in the solar system?", "answer": "Jupiter"}
	require.Equal(t, http.StatusForbidden, call(t, c, "PUT", path, otherTok, edit, nil))
	require.Equal(t, http.StatusOK, call(t, c, "PUT", path, teacherTok, edit, &got))
	require.Equal(t, edit["question"], got.Question)

	require.Equal(t, http.StatusForbidden, call(t, c, "DELETE", path, otherTok, nil, nil))
	require.Equal(t, http.StatusNoContent, call(t, c, "DELETE", path, adminTok, nil, nil))
	require.Equal(t, http.StatusNotFound, call(t, c, "GET", path, "", nil, nil))
}

func TestQuizzes_CreationLimit(t *testing.T) {
	e := newEnv(t)
	tid, teacherTok := e.user(t, "stu", "student")
	_, adminTok := e.user(t, "root", "admin")
	for i := 0; i < 50; i++ {
		e.seedQuizzes(t, tid, "q"+strconv.Itoa(i), "a"+strconv.Itoa(i))
	}
	c := newClient(t)
	body := map[string]string{"question": "one more", "answer": "no"}
	require.Equal(t, http.StatusTooManyRequests, call(t, c, "POST", e.srv.URL+"/quizzes", teacherTok, body, nil))
	require.Equal(t, http.StatusCreated, call(t, c, "POST", e.srv.URL+"/quizzes", adminTok, body, nil))
}

func TestAttachments(t *testing.T) {
	e := newEnv(t)
	tid, teacherTok := e.user(t, "tess", "teacher")
	_, otherTok := e.user(t, "tom", "teacher")
	ids := e.seedQuizzes(t, tid, "What is pictured?", "cat")
	c := newClient(t)

	upload := func(token string) int {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "cat.png")
		require.NoError(t, err)
		_, _ = fw.Write([]byte("fake-png"))
		require.NoError(t, mw.Close())
		req, err := http.NewRequest("POST", e.srv.URL+"/quizzes/"+strconv.FormatInt(ids[0], 10)+"/attachment", &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := c.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	require.Equal(t, http.StatusForbidden, upload(otherTok))
	require.Equal(t, http.StatusOK, upload(teacherTok))

	q, err := e.quizzes.GetQuiz(context.Background(), ids[0])
	require.NoError(t, err)
	require.Equal(t, storage.AttachmentKey(ids[0]), q.AttachmentKey)

	resp, err := c.Get(e.srv.URL + "/attachments/" + q.AttachmentKey)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "fake-png", string(b))

	resp, err = c.Get(e.srv.URL + "/attachments/quizzes/404/attachment")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	e := newEnv(t)
	c := newClient(t)
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/healthz", "", nil, nil))
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/readyz", "", nil, nil))
}

func TestLogin_BcryptAccount(t *testing.T) {
	e := newEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("pw123456"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, e.users.EnsureAdmin(context.Background(), "admin", string(hash)))
	c := newClient(t)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.Equal(t, http.StatusOK, call(t, c, "POST", e.srv.URL+"/auth/login", "", map[string]string{"username": "admin", "password": "pw123456"}, &login))
	claims, err := e.auth.Parse(login.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "admin", claims.Role)
}

func TestQuizzes_RegisteredUserCanAuthor(t *testing.T) {
	e := newEnv(t)
	c := newClient(t)

	require.Equal(t, http.StatusCreated, call(t, c, "POST", e.srv.URL+"/users", "", map[string]string{"username": "amy", "password": "secret1"}, nil))
	var login struct {
		AccessToken string `json:"access_token"`
		UserID      string `json:"user_id"`
	}
	require.Equal(t, http.StatusOK, call(t, c, "POST", e.srv.URL+"/auth/login", "", map[string]string{"username": "amy", "password": "secret1"}, &login))

	var q quiz.Quiz
	require.Equal(t, http.StatusCreated, call(t, c, "POST", e.srv.URL+"/quizzes", login.AccessToken, map[string]string{"question": "Smallest prime?", "answer": "2"}, &q))
	require.Equal(t, login.UserID, q.AuthorID)

	path := e.srv.URL + "/quizzes/" + strconv.FormatInt(q.ID, 10)
	require.Equal(t, http.StatusOK, call(t, c, "PUT", path, login.AccessToken, map[string]string{"question": "Smallest prime number?", "answer": "2"}, nil))

	var mine []quiz.Quiz
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/users/"+login.UserID+"/quizzes", "", nil, &mine))
	require.Len(t, mine, 1)
	require.Empty(t, mine[0].Answer)

	require.Equal(t, http.StatusNoContent, call(t, c, "DELETE", path, login.AccessToken, nil, nil))
}

func TestQuizzes_DeleteRemovesAttachment(t *testing.T) {
	e := newEnv(t)
	tid, tok := e.user(t, "tess", "teacher")
	ids := e.seedQuizzes(t, tid, "What is pictured?", "cat")
	c := newClient(t)
	ctx := context.Background()

	key := storage.AttachmentKey(ids[0])
	_, err := e.blobs.Put(ctx, key, strings.NewReader("fake-png"))
	require.NoError(t, err)
	require.NoError(t, e.quizzes.SetAttachment(ctx, ids[0], key))

	require.Equal(t, http.StatusNoContent, call(t, c, "DELETE", e.srv.URL+"/quizzes/"+strconv.FormatInt(ids[0], 10), tok, nil, nil))

	resp, err := c.Get(e.srv.URL + "/attachments/" + key)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	_, err = e.blobs.Get(ctx, key)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFavourites(t *testing.T) {
	e := newEnv(t)
	ids := e.seedQuizzes(t, "seed", "q1", "a1", "q2", "a2", "q3", "a3")
	uid, tok := e.user(t, "ana", "student")
	_, otherTok := e.user(t, "bo", "student")
	c := newClient(t)
	favPath := func(id int64) string {
		return e.srv.URL + "/users/" + uid + "/favourites/" + strconv.FormatInt(id, 10)
	}

	require.Equal(t, http.StatusNoContent, call(t, c, "PUT", favPath(ids[1]), tok, nil, nil))
	require.Equal(t, http.StatusNoContent, call(t, c, "PUT", favPath(ids[1]), tok, nil, nil))
	require.Equal(t, http.StatusForbidden, call(t, c, "PUT", favPath(ids[0]), otherTok, nil, nil))
	require.Equal(t, http.StatusNotFound, call(t, c, "PUT", favPath(999), tok, nil, nil))

	var favs []quiz.Quiz
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/quizzes?favourites=1", tok, nil, &favs))
	require.Len(t, favs, 1)
	require.Equal(t, ids[1], favs[0].ID)
	require.True(t, favs[0].Favourite)
	require.Equal(t, http.StatusUnauthorized, call(t, c, "GET", e.srv.URL+"/quizzes?favourites=1", "", nil, nil))

	var all []quiz.Quiz
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/quizzes", tok, nil, &all))
	require.Len(t, all, 3)
	marked := map[int64]bool{}
	for _, q := range all {
		marked[q.ID] = q.Favourite
	}
	require.Equal(t, map[int64]bool{ids[0]: false, ids[1]: true, ids[2]: false}, marked)

	all = nil
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/quizzes", otherTok, nil, &all))
	for _, q := range all {
		require.False(t, q.Favourite)
	}

	require.Equal(t, http.StatusNoContent, call(t, c, "DELETE", favPath(ids[1]), tok, nil, nil))
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/quizzes?favourites=1", tok, nil, &favs))
	require.Empty(t, favs)
}

func TestPractice_SingleQuizLeavesRoundAlone(t *testing.T) {
	e := newEnv(t)
	ids := e.seedQuizzes(t, "seed", "Capital of Italy", "Rome", "Capital of France", "Paris")
	c := newClient(t)
	base := e.srv.URL + "/quizzes/" + strconv.FormatInt(ids[0], 10)

	var shown struct {
		Quiz   quiz.Quiz `json:"quiz"`
		Answer string    `json:"answer"`
	}
	require.Equal(t, http.StatusOK, call(t, c, "GET", base+"/play?answer=Milan", "", nil, &shown))
	require.Equal(t, "Capital of Italy", shown.Quiz.Question)
	require.Empty(t, shown.Quiz.Answer)
	require.Equal(t, "Milan", shown.Answer)

	var res struct {
		Correct bool   `json:"correct"`
		Answer  string `json:"answer"`
	}
	require.Equal(t, http.StatusOK, call(t, c, "GET", base+"/check?answer="+url.QueryEscape(" rome "), "", nil, &res))
	require.True(t, res.Correct)
	require.Equal(t, http.StatusOK, call(t, c, "GET", base+"/check?answer=Milan", "", nil, &res))
	require.False(t, res.Correct)
	require.Equal(t, http.StatusNotFound, call(t, c, "GET", e.srv.URL+"/quizzes/999/check?answer=x", "", nil, nil))

	// practice never opened or advanced a play round
	var d drawResp
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/play/normal", "", nil, &d))
	require.Zero(t, d.Score)
}

func TestPlay_ReplayedCorrectCheckDoesNotInflateScore(t *testing.T) {
	e := newEnv(t)
	e.seedQuizzes(t, "seed", "a", "1", "b", "2")
	uid, tok := e.user(t, "ana", "student")
	c := newClient(t)

	var d drawResp
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/play/normal", tok, nil, &d))
	path := e.srv.URL + "/play/normal/" + strconv.FormatInt(d.Quiz.ID, 10) + "/check"
	var res checkResp
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, call(t, c, "POST", path, tok, map[string]string{"answer": e.answers[d.Quiz.ID]}, &res))
		require.Equal(t, 1, res.ScoreAfter)
	}

	var other drawResp
	require.Equal(t, http.StatusOK, call(t, c, "GET", e.srv.URL+"/play/normal", tok, nil, &other))
	path = e.srv.URL + "/play/normal/" + strconv.FormatInt(other.Quiz.ID, 10) + "/check"
	require.Equal(t, http.StatusOK, call(t, c, "POST", path, tok, map[string]string{"answer": "wrong"}, &res))
	require.Equal(t, 1, res.ScoreBefore)

	u, err := e.users.GetUser(context.Background(), uid)
	require.NoError(t, err)
	require.Equal(t, 1, u.ScoreNormal)
}

