package service

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-go-api/internal/dto"
	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/pkg/ai"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeQuizRepo struct {
	quizzes      map[uint]models.Quiz
	nextID       uint
	replaceCalls int
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{quizzes: make(map[uint]models.Quiz), nextID: 1}
}

func (f *fakeQuizRepo) Create(ctx context.Context, quiz *models.Quiz) error {
	quiz.ID = f.nextID
	f.nextID++
	for i := range quiz.Questions {
		quiz.Questions[i].QuizID = quiz.ID
		quiz.Questions[i].Position = i
	}
	f.quizzes[quiz.ID] = *quiz
	return nil
}

func (f *fakeQuizRepo) GetByID(ctx context.Context, id uint) (models.Quiz, error) {
	quiz, ok := f.quizzes[id]
	if !ok {
		return models.Quiz{}, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

func (f *fakeQuizRepo) ListForClass(ctx context.Context, classID uint) ([]models.Quiz, error) {
	var out []models.Quiz
	for _, quiz := range f.quizzes {
		if quiz.ClassID == classID {
			out = append(out, quiz)
		}
	}
	return out, nil
}

func (f *fakeQuizRepo) ReplaceQuestions(ctx context.Context, quizID uint, title, description string, questions []models.Question) error {
	quiz, ok := f.quizzes[quizID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.replaceCalls++
	quiz.Title = title
	quiz.Description = description
	for i := range questions {
		questions[i].QuizID = quizID
		questions[i].Position = i
	}
	quiz.Questions = questions
	f.quizzes[quizID] = quiz
	return nil
}

func (f *fakeQuizRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.quizzes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.quizzes, id)
	return nil
}

type fakeClassRepo struct {
	classes        map[uint]models.Class
	students       map[uint][]models.User
	enrolledCounts map[uint]int64
	studentClasses map[uint][]models.Class
}

func (f *fakeClassRepo) Create(ctx context.Context, class *models.Class) error {
	f.classes[class.ID] = *class
	return nil
}

func (f *fakeClassRepo) GetByID(ctx context.Context, id uint) (models.Class, error) {
	class, ok := f.classes[id]
	if !ok {
		return models.Class{}, gorm.ErrRecordNotFound
	}
	return class, nil
}

func (f *fakeClassRepo) ListForTutor(ctx context.Context, tutorID uint) ([]models.Class, error) {
	return nil, nil
}

func (f *fakeClassRepo) ListForStudent(ctx context.Context, studentID uint) ([]models.Class, error) {
	return f.studentClasses[studentID], nil
}

func (f *fakeClassRepo) Enroll(ctx context.Context, enrollment *models.Enrollment) error {
	return nil
}

func (f *fakeClassRepo) ListStudents(ctx context.Context, classID uint) ([]models.User, error) {
	return f.students[classID], nil
}

func (f *fakeClassRepo) CountEnrolled(ctx context.Context, classID uint) (int64, error) {
	return f.enrolledCounts[classID], nil
}

type fakeGenerator struct {
	drafts []ai.QuestionDraft
	err    error
}

func (f *fakeGenerator) GenerateQuestions(ctx context.Context, topic string, count int) ([]ai.QuestionDraft, error) {
	return f.drafts, f.err
}

func newQuizService(t *testing.T, quizzes *fakeQuizRepo, generator ai.Generator) QuizService {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	classes := &fakeClassRepo{classes: map[uint]models.Class{
		1: {ID: 1, Title: "Algebra", TutorID: 7},
	}}
	return NewQuizService(quizzes, classes, validate, generator, testLogger())
}

func TestQuizServiceCreateDefaultsPoints(t *testing.T) {
	quizzes := newFakeQuizRepo()
	svc := newQuizService(t, quizzes, nil)

	response, err := svc.Create(context.Background(), dto.QuizCreateRequest{
		ClassID: 1,
		Title:   "Fractions",
		Questions: []dto.QuestionPayload{
			{Text: "1/2 + 1/2?", Choices: []string{"1", "2"}, CorrectIndex: 0},
			{Text: "Worth more", Choices: []string{"a", "b"}, CorrectIndex: 1, Points: 3},
		},
	}, Actor{ID: 7, Role: models.RoleTutor})
	require.NoError(t, err)
	require.Len(t, response.Questions, 2)
	require.Equal(t, 1, response.Questions[0].Points)
	require.Equal(t, 3, response.Questions[1].Points)
	require.Equal(t, 4, response.MaxPoints)
}

func TestQuizServiceCreateSanitizesMarkup(t *testing.T) {
	quizzes := newFakeQuizRepo()
	svc := newQuizService(t, quizzes, nil)

	response, err := svc.Create(context.Background(), dto.QuizCreateRequest{
		ClassID: 1,
		Title:   "<b>Geometry</b>",
		Questions: []dto.QuestionPayload{
			{Text: "<script>alert(1)</script>Area of a square?", Choices: []string{"s^2", "2s"}, CorrectIndex: 0},
		},
	}, Actor{ID: 7, Role: models.RoleTutor})
	require.NoError(t, err)
	require.Equal(t, "Geometry", response.Title)
	require.Equal(t, "Area of a square?", response.Questions[0].Text)
}

func TestQuizServiceCreateRejectsForeignClass(t *testing.T) {
	quizzes := newFakeQuizRepo()
	svc := newQuizService(t, quizzes, nil)

	_, err := svc.Create(context.Background(), dto.QuizCreateRequest{
		ClassID: 1,
		Title:   "Fractions",
		Questions: []dto.QuestionPayload{
			{Text: "q", Choices: []string{"a", "b"}, CorrectIndex: 0},
		},
	}, Actor{ID: 99, Role: models.RoleTutor})
	require.ErrorIs(t, err, ErrNotClassOwner)
}

func TestQuizServiceReplaceValidatesBeforeWriting(t *testing.T) {
	quizzes := newFakeQuizRepo()
	svc := newQuizService(t, quizzes, nil)

	created, err := svc.Create(context.Background(), dto.QuizCreateRequest{
		ClassID: 1,
		Title:   "Original",
		Questions: []dto.QuestionPayload{
			{Text: "keep me", Choices: []string{"a", "b"}, CorrectIndex: 0},
		},
	}, Actor{ID: 7, Role: models.RoleTutor})
	require.NoError(t, err)

	// Second question's answer index is out of range; the whole replace must
	// fail before the repository is touched.
	_, err = svc.Replace(context.Background(), created.ID, dto.QuizUpdateRequest{
		Title: "Updated",
		Questions: []dto.QuestionPayload{
			{Text: "fine", Choices: []string{"a", "b"}, CorrectIndex: 0},
			{Text: "broken", Choices: []string{"a", "b"}, CorrectIndex: 5},
		},
	}, Actor{ID: 7, Role: models.RoleTutor})
	require.Error(t, err)
	require.ErrorIs(t, err, models.ErrAnswerOutOfRange)
	require.Equal(t, 0, quizzes.replaceCalls)

	current, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Original", current.Title)
	require.Len(t, current.Questions, 1)
}

func TestQuizServiceReplaceSwapsWholeSet(t *testing.T) {
	quizzes := newFakeQuizRepo()
	svc := newQuizService(t, quizzes, nil)

	created, err := svc.Create(context.Background(), dto.QuizCreateRequest{
		ClassID: 1,
		Title:   "Original",
		Questions: []dto.QuestionPayload{
			{Text: "old one", Choices: []string{"a", "b"}, CorrectIndex: 0},
			{Text: "old two", Choices: []string{"a", "b"}, CorrectIndex: 1},
		},
	}, Actor{ID: 7, Role: models.RoleTutor})
	require.NoError(t, err)

	updated, err := svc.Replace(context.Background(), created.ID, dto.QuizUpdateRequest{
		Title: "Updated",
		Questions: []dto.QuestionPayload{
			{Text: "new only", Choices: []string{"x", "y", "z"}, CorrectIndex: 2, Points: 2},
		},
	}, Actor{ID: 7, Role: models.RoleTutor})
	require.NoError(t, err)
	require.Equal(t, "Updated", updated.Title)
	require.Len(t, updated.Questions, 1)
	require.Equal(t, "new only", updated.Questions[0].Text)
	require.Equal(t, 2, updated.MaxPoints)
}

func TestQuizServiceReplaceMissingQuiz(t *testing.T) {
	svc := newQuizService(t, newFakeQuizRepo(), nil)

	_, err := svc.Replace(context.Background(), 404, dto.QuizUpdateRequest{
		Title: "Updated",
		Questions: []dto.QuestionPayload{
			{Text: "q", Choices: []string{"a", "b"}, CorrectIndex: 0},
		},
	}, Actor{ID: 7, Role: models.RoleTutor})
	require.ErrorIs(t, err, ErrQuizNotFound)
}

func TestQuizServiceStudentViewOmitsAnswerKey(t *testing.T) {
	quizzes := newFakeQuizRepo()
	svc := newQuizService(t, quizzes, nil)

	created, err := svc.Create(context.Background(), dto.QuizCreateRequest{
		ClassID: 1,
		Title:   "Fractions",
		Questions: []dto.QuestionPayload{
			{Text: "1/2 + 1/2?", Choices: []string{"1", "2"}, CorrectIndex: 0},
		},
	}, Actor{ID: 7, Role: models.RoleTutor})
	require.NoError(t, err)

	view, err := svc.GetForStudent(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, view.Questions, 1)

	encoded, err := json.Marshal(view)
	require.NoError(t, err)
	require.NotContains(t, string(encoded), "correct_index")
}

func TestQuizServiceImportQuestions(t *testing.T) {
	svc := newQuizService(t, newFakeQuizRepo(), nil)

	payloads, err := svc.ImportQuestions(context.Background(), json.RawMessage(`[
		{"text": "2+2?", "choices": ["3", "4"], "correct_index": 1},
		{"text": "3*3?", "choices": ["6", "9"], "correct_index": 1, "points": 2}
	]`))
	require.NoError(t, err)
	require.Len(t, payloads, 2)
	require.Equal(t, 2, payloads[1].Points)
}

func TestQuizServiceImportRejectsBadShape(t *testing.T) {
	svc := newQuizService(t, newFakeQuizRepo(), nil)

	cases := []string{
		`[]`,
		`[{"text": "q", "choices": [], "correct_index": 0}]`,
		`[{"text": "q", "choices": ["a"]}]`,
		`{"text": "not an array"}`,
		`not json`,
	}
	for _, raw := range cases {
		_, err := svc.ImportQuestions(context.Background(), json.RawMessage(raw))
		require.ErrorIs(t, err, ErrImportInvalid, "payload: %s", raw)
	}
}

func TestQuizServiceDraftDropsInvalidQuestions(t *testing.T) {
	generator := &fakeGenerator{drafts: []ai.QuestionDraft{
		{Text: "valid", Choices: []string{"a", "b"}, CorrectIndex: 1, Points: 2},
		{Text: "bad index", Choices: []string{"a", "b"}, CorrectIndex: 9, Points: 1},
		{Text: "no choices", Choices: nil, CorrectIndex: 0, Points: 1},
		{Text: "defaults points", Choices: []string{"x", "y"}, CorrectIndex: 0},
	}}
	svc := newQuizService(t, newFakeQuizRepo(), generator)

	response, err := svc.Draft(context.Background(), dto.QuizDraftRequest{Topic: "fractions"})
	require.NoError(t, err)
	require.Len(t, response.Questions, 2)
	require.Equal(t, "valid", response.Questions[0].Text)
	require.Equal(t, 1, response.Questions[1].Points)
}

func TestQuizServiceDraftDisabled(t *testing.T) {
	svc := newQuizService(t, newFakeQuizRepo(), nil)

	_, err := svc.Draft(context.Background(), dto.QuizDraftRequest{Topic: "fractions"})
	require.ErrorIs(t, err, ErrDraftsDisabled)
}
