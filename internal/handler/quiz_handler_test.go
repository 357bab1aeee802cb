package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-go-api/internal/config"
	"github.com/noah-isme/classroom-go-api/internal/dto"
	"github.com/noah-isme/classroom-go-api/internal/handler"
	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/repository"
	"github.com/noah-isme/classroom-go-api/internal/router"
	"github.com/noah-isme/classroom-go-api/internal/service"
)

// setupQuizApp builds the API against an in-memory database. The fake JWT
// middleware trusts X-Test-User and X-Test-Role headers so tests can act as
// any account.
func setupQuizApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.Enrollment{},
		&models.Quiz{},
		&models.Question{},
		&models.Submission{},
		&models.AttendanceRecord{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	classService := service.NewClassService(classRepo, userRepo, validate, logger)
	quizService := service.NewQuizService(quizRepo, classRepo, validate, nil, logger)
	submissionService := service.NewSubmissionService(submissionRepo, quizRepo, validate, nil, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, classRepo, validate, logger)
	analyticsService := service.NewAnalyticsService(quizRepo, submissionRepo, classRepo, attendanceRepo, nil, 0, logger)
	exportService := service.NewExportService(submissionRepo, quizRepo, attendanceRepo, classRepo, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		ClassHandler:      handler.NewClassHandler(classService, attendanceService, analyticsService, exportService, logger),
		QuizHandler:       handler.NewQuizHandler(quizService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, exportService, logger),
		AnalyticsHandler:  handler.NewAnalyticsHandler(analyticsService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			if id, err := strconv.ParseUint(c.Get("X-Test-User"), 10, 64); err == nil {
				c.Locals("user_id", uint(id))
			}
			if role := c.Get("X-Test-Role"); role != "" {
				c.Locals("user_role", role)
			}
			return c.Next()
		},
	})

	return app, db
}

func jsonRequest(t *testing.T, method, path string, payload interface{}, userID uint, role string) *http.Request {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(userID), 10))
	req.Header.Set("X-Test-Role", role)
	return req
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestQuizLifecycleAndScoring(t *testing.T) {
	app, db := setupQuizApp(t)

	tutor := models.User{Name: "Tutor", Email: "tutor@example.com", Role: models.RoleTutor}
	require.NoError(t, db.Create(&tutor).Error)
	student := models.User{Name: "Student", Email: "student@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)
	class := models.Class{Title: "Algebra", TutorID: tutor.ID}
	require.NoError(t, db.Create(&class).Error)

	// Tutor creates a quiz with two questions.
	createReq := jsonRequest(t, "POST", "/api/v1/quizzes", dto.QuizCreateRequest{
		ClassID: class.ID,
		Title:   "Fractions",
		Questions: []dto.QuestionPayload{
			{Text: "1/2 + 1/2?", Choices: []string{"1", "2"}, CorrectIndex: 0},
			{Text: "2 * 1/4?", Choices: []string{"1/2", "1/4", "2"}, CorrectIndex: 0, Points: 2},
		},
	}, tutor.ID, models.RoleTutor)
	resp, err := app.Test(createReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Success bool             `json:"success"`
		Data    dto.QuizResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)
	require.True(t, created.Success)
	require.Len(t, created.Data.Questions, 2)
	require.Equal(t, 3, created.Data.MaxPoints)
	quizID := strconv.FormatUint(uint64(created.Data.ID), 10)

	// The student view must not leak the answer key.
	studentReq := jsonRequest(t, "GET", "/api/v1/student/quizzes/"+quizID, nil, student.ID, models.RoleStudent)
	resp, err = app.Test(studentReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NotContains(t, string(raw), "correct_index")

	// Student submits: first answer right, second wrong.
	answer0, answer1 := 0, 2
	submitReq := jsonRequest(t, "POST", "/api/v1/student/quizzes/"+quizID+"/submissions", dto.SubmissionCreateRequest{
		Answers: []*int{&answer0, &answer1},
	}, student.ID, models.RoleStudent)
	resp, err = app.Test(submitReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var scored struct {
		Success bool                         `json:"success"`
		Data    dto.SubmissionResultResponse `json:"data"`
	}
	decodeResponse(t, resp, &scored)
	require.True(t, scored.Success)
	require.InDelta(t, 33.33, scored.Data.Score, 0.001)
	require.Equal(t, []bool{true, false}, scored.Data.Correct)

	// Tutor sees the attempt in the ranked list.
	listReq := jsonRequest(t, "GET", "/api/v1/quizzes/"+quizID+"/submissions", nil, tutor.ID, models.RoleTutor)
	resp, err = app.Test(listReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listed struct {
		Success bool                     `json:"success"`
		Data    []dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &listed)
	require.Len(t, listed.Data, 1)
	require.Equal(t, "Student", listed.Data[0].StudentName)

	// The CSV export carries the same attempt.
	exportReq := jsonRequest(t, "GET", "/api/v1/quizzes/"+quizID+"/submissions.csv", nil, tutor.ID, models.RoleTutor)
	resp, err = app.Test(exportReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")

	csvBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Contains(t, string(csvBody), "student@example.com")
}

func TestQuizReplaceKeepsStoreConsistent(t *testing.T) {
	app, db := setupQuizApp(t)

	tutor := models.User{Name: "Tutor", Email: "tutor2@example.com", Role: models.RoleTutor}
	require.NoError(t, db.Create(&tutor).Error)
	class := models.Class{Title: "Geometry", TutorID: tutor.ID}
	require.NoError(t, db.Create(&class).Error)

	createReq := jsonRequest(t, "POST", "/api/v1/quizzes", dto.QuizCreateRequest{
		ClassID: class.ID,
		Title:   "Shapes",
		Questions: []dto.QuestionPayload{
			{Text: "Sides of a triangle?", Choices: []string{"3", "4"}, CorrectIndex: 0},
		},
	}, tutor.ID, models.RoleTutor)
	resp, err := app.Test(createReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.QuizResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)
	quizID := strconv.FormatUint(uint64(created.Data.ID), 10)

	// A replace with an invalid question must leave the original set intact.
	badReq := jsonRequest(t, "PUT", "/api/v1/quizzes/"+quizID, dto.QuizUpdateRequest{
		Title: "Broken",
		Questions: []dto.QuestionPayload{
			{Text: "ok", Choices: []string{"a", "b"}, CorrectIndex: 0},
			{Text: "bad", Choices: []string{"a", "b"}, CorrectIndex: 7},
		},
	}, tutor.ID, models.RoleTutor)
	resp, err = app.Test(badReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	getReq := jsonRequest(t, "GET", "/api/v1/quizzes/"+quizID, nil, tutor.ID, models.RoleTutor)
	resp, err = app.Test(getReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var current struct {
		Data dto.QuizResponse `json:"data"`
	}
	decodeResponse(t, resp, &current)
	require.Equal(t, "Shapes", current.Data.Title)
	require.Len(t, current.Data.Questions, 1)

	// A valid replace swaps the entire set.
	goodReq := jsonRequest(t, "PUT", "/api/v1/quizzes/"+quizID, dto.QuizUpdateRequest{
		Title: "Shapes v2",
		Questions: []dto.QuestionPayload{
			{Text: "Sides of a square?", Choices: []string{"3", "4"}, CorrectIndex: 1},
			{Text: "Sides of a pentagon?", Choices: []string{"5", "6"}, CorrectIndex: 0},
		},
	}, tutor.ID, models.RoleTutor)
	resp, err = app.Test(goodReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated struct {
		Data dto.QuizResponse `json:"data"`
	}
	decodeResponse(t, resp, &updated)
	require.Equal(t, "Shapes v2", updated.Data.Title)
	require.Len(t, updated.Data.Questions, 2)
	require.Equal(t, "Sides of a square?", updated.Data.Questions[0].Text)
}

func TestStudentCannotReachAuthoringRoutes(t *testing.T) {
	app, _ := setupQuizApp(t)

	req := jsonRequest(t, "POST", "/api/v1/quizzes", dto.QuizCreateRequest{
		ClassID: 1,
		Title:   "Nope",
		Questions: []dto.QuestionPayload{
			{Text: "q", Choices: []string{"a", "b"}, CorrectIndex: 0},
		},
	}, 20, models.RoleStudent)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
