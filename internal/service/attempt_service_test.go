package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"quizhub/internal/database"
	"quizhub/internal/generator"
	"quizhub/internal/models"
	"quizhub/internal/repository"
)

type testEnv struct {
	db          *database.DB
	userRepo    *repository.UserRepository
	profileRepo *repository.ProfileRepository
	contentRepo *repository.ContentRepository
	quizRepo    *repository.QuizRepository
	attemptRepo *repository.AttemptRepository
	attempts    *AttemptService

	userID        int64
	categoryID    int64
	subcategoryID int64
}

// emptyGenerator simulates generation producing nothing usable
type emptyGenerator struct{}

func (emptyGenerator) Generate(ctx context.Context, topic, difficulty string, count int) ([]generator.GeneratedQuestion, error) {
	return nil, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	env := &testEnv{
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		profileRepo: repository.NewProfileRepository(db),
		contentRepo: repository.NewContentRepository(db),
		quizRepo:    repository.NewQuizRepository(db),
		attemptRepo: repository.NewAttemptRepository(db),
	}
	env.attempts = NewAttemptService(db, generator.WithFallback(nil), env.contentRepo, env.quizRepo, env.attemptRepo, env.profileRepo)

	user, err := env.userRepo.CreateUser("alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	env.userID = user.ID

	category, err := env.contentRepo.CreateCategory("Academic", "", "book-open")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	env.categoryID = category.ID
	sub, err := env.contentRepo.CreateSubcategory("Physics", "", category.ID)
	if err != nil {
		t.Fatalf("Failed to create subcategory: %v", err)
	}
	env.subcategoryID = sub.ID

	return env
}

func (env *testEnv) newUser(t *testing.T, username string) int64 {
	t.Helper()
	user, err := env.userRepo.CreateUser(username, username+"@example.com", "hash")
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user.ID
}

func (env *testEnv) start(t *testing.T, difficulty string, count int) *models.QuizAttempt {
	t.Helper()
	attempt, err := env.attempts.Start(context.Background(), env.userID, env.subcategoryID, difficulty, count)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return attempt
}

func TestStartCreatesQuizAndAttempt(t *testing.T) {
	env := newTestEnv(t)

	attempt := env.start(t, "easy", 5)

	if attempt.Status != models.AttemptInProgress {
		t.Errorf("attempt status = %q, want in_progress", attempt.Status)
	}
	if attempt.TotalQuestions != 5 {
		t.Errorf("total questions = %d, want 5", attempt.TotalQuestions)
	}
	if attempt.TimeRemaining == nil || *attempt.TimeRemaining != 300 {
		t.Errorf("time remaining = %v, want 300", attempt.TimeRemaining)
	}

	quiz, err := env.quizRepo.GetQuiz(attempt.QuizID)
	if err != nil || quiz == nil {
		t.Fatalf("quiz not found: %v", err)
	}
	if quiz.Title != "Physics Quiz - Easy" {
		t.Errorf("quiz title = %q, want %q", quiz.Title, "Physics Quiz - Easy")
	}
	if quiz.TimeLimit != 300 {
		t.Errorf("time limit = %d, want 300", quiz.TimeLimit)
	}

	questions, err := env.quizRepo.GetQuizQuestions(quiz.ID)
	if err != nil {
		t.Fatalf("GetQuizQuestions failed: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("got %d questions, want 5", len(questions))
	}
	for i, q := range questions {
		if q.Order != i {
			t.Errorf("question %d has order %d", i, q.Order)
		}
	}
}

func TestStartReplacesInProgressAttempt(t *testing.T) {
	env := newTestEnv(t)

	first := env.start(t, "easy", 3)
	second := env.start(t, "easy", 3)

	gone, err := env.attemptRepo.GetAttempt(first.ID)
	if err != nil {
		t.Fatalf("GetAttempt failed: %v", err)
	}
	if gone != nil {
		t.Error("previous in-progress attempt still exists")
	}

	current, err := env.attemptRepo.GetAttempt(second.ID)
	if err != nil || current == nil {
		t.Fatalf("new attempt missing: %v", err)
	}
}

func TestStartKeepsCompletedAttempts(t *testing.T) {
	env := newTestEnv(t)

	first := env.start(t, "easy", 3)
	if _, err := env.attempts.Submit(first.ID, env.userID, 0, ""); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	env.start(t, "easy", 3)

	kept, err := env.attemptRepo.GetAttempt(first.ID)
	if err != nil || kept == nil {
		t.Fatalf("completed attempt was deleted: %v", err)
	}
}

func TestStartGenerationFailure(t *testing.T) {
	env := newTestEnv(t)

	attempts := NewAttemptService(env.db, emptyGenerator{}, env.contentRepo, env.quizRepo, env.attemptRepo, env.profileRepo)
	_, err := attempts.Start(context.Background(), env.userID, env.subcategoryID, "easy", 5)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}

	count, err := env.quizRepo.CountQuizzes()
	if err != nil {
		t.Fatalf("CountQuizzes failed: %v", err)
	}
	if count != 0 {
		t.Errorf("quiz was created despite generation failure")
	}
}

func TestStartUnknownSubcategory(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.attempts.Start(context.Background(), env.userID, 9999, "easy", 5)
	if !errors.Is(err, ErrSubcategoryNotFound) {
		t.Fatalf("err = %v, want ErrSubcategoryNotFound", err)
	}
}

func TestRecordAnswerLastWins(t *testing.T) {
	env := newTestEnv(t)

	attempt := env.start(t, "easy", 3)
	questions, err := env.quizRepo.GetQuizQuestions(attempt.QuizID)
	if err != nil {
		t.Fatalf("GetQuizQuestions failed: %v", err)
	}
	q := questions[0]

	// Placeholder questions are always correct on "A"
	if err := env.attempts.RecordAnswer(attempt.ID, env.userID, q.ID, "B", 0, nil); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	if err := env.attempts.RecordAnswer(attempt.ID, env.userID, q.ID, "A", 0, nil); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	answers, err := env.attemptRepo.GetAnswers(attempt.ID)
	if err != nil {
		t.Fatalf("GetAnswers failed: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("got %d answer rows, want 1", len(answers))
	}
	if answers[0].SelectedAnswer == nil || *answers[0].SelectedAnswer != "A" {
		t.Errorf("stored answer = %v, want A", answers[0].SelectedAnswer)
	}
	if !answers[0].IsCorrect {
		t.Error("answer A should be marked correct")
	}
}

func TestRecordAnswerUpdatesProgress(t *testing.T) {
	env := newTestEnv(t)

	attempt := env.start(t, "easy", 3)
	remaining := 120
	if err := env.attempts.RecordAnswer(attempt.ID, env.userID, 0, "", 2, &remaining); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	reloaded, err := env.attemptRepo.GetAttempt(attempt.ID)
	if err != nil {
		t.Fatalf("GetAttempt failed: %v", err)
	}
	if reloaded.CurrentQuestion != 2 {
		t.Errorf("current question = %d, want 2", reloaded.CurrentQuestion)
	}
	if reloaded.TimeRemaining == nil || *reloaded.TimeRemaining != 120 {
		t.Errorf("time remaining = %v, want 120", reloaded.TimeRemaining)
	}

	// A nil timeRemaining must leave the stored value alone
	if err := env.attempts.RecordAnswer(attempt.ID, env.userID, 0, "", 3, nil); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	reloaded, _ = env.attemptRepo.GetAttempt(attempt.ID)
	if reloaded.TimeRemaining == nil || *reloaded.TimeRemaining != 120 {
		t.Errorf("time remaining = %v, want unchanged 120", reloaded.TimeRemaining)
	}
}

func TestRecordAnswerRejectsForeignQuestion(t *testing.T) {
	env := newTestEnv(t)

	attempt := env.start(t, "easy", 3)

	// A question belonging to a different quiz
	otherQuiz, err := env.quizRepo.CreateQuiz("Other", "easy", env.subcategoryID, 60)
	if err != nil {
		t.Fatalf("CreateQuiz failed: %v", err)
	}
	foreign := &models.Question{QuizID: otherQuiz.ID, QuestionText: "x", CorrectAnswer: "A"}
	if err := env.quizRepo.CreateQuestion(foreign); err != nil {
		t.Fatalf("CreateQuestion failed: %v", err)
	}

	err = env.attempts.RecordAnswer(attempt.ID, env.userID, foreign.ID, "A", 0, nil)
	if !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("err = %v, want ErrInvalidQuestion", err)
	}
}

func TestRecordAnswerOwnershipAndCompletion(t *testing.T) {
	env := newTestEnv(t)

	attempt := env.start(t, "easy", 3)

	otherID := env.newUser(t, "bob")
	err := env.attempts.RecordAnswer(attempt.ID, otherID, 0, "", 0, nil)
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("err = %v, want ErrAccessDenied", err)
	}

	if _, err := env.attempts.Submit(attempt.ID, env.userID, 0, ""); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	err = env.attempts.RecordAnswer(attempt.ID, env.userID, 0, "", 1, nil)
	if !errors.Is(err, ErrAttemptCompleted) {
		t.Fatalf("err = %v, want ErrAttemptCompleted", err)
	}
}

func TestSubmitScoresAndAwardsProgress(t *testing.T) {
	env := newTestEnv(t)

	attempt := env.start(t, "medium", 4)
	questions, _ := env.quizRepo.GetQuizQuestions(attempt.QuizID)

	// Two correct, one wrong, one unanswered
	mustRecord := func(q models.Question, answer string) {
		t.Helper()
		if err := env.attempts.RecordAnswer(attempt.ID, env.userID, q.ID, answer, 0, nil); err != nil {
			t.Fatalf("RecordAnswer failed: %v", err)
		}
	}
	mustRecord(questions[0], "A")
	mustRecord(questions[1], "A")
	mustRecord(questions[2], "C")

	completed, err := env.attempts.Submit(attempt.ID, env.userID, 0, "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if completed.Status != models.AttemptCompleted {
		t.Errorf("status = %q, want completed", completed.Status)
	}
	if completed.Score != 2 {
		t.Errorf("score = %d, want 2", completed.Score)
	}
	if completed.CompletedAt == nil {
		t.Error("completed_at not set")
	}

	profile, err := env.profileRepo.GetByUserID(env.userID)
	if err != nil || profile == nil {
		t.Fatalf("profile missing: %v", err)
	}
	// 2 correct at medium difficulty
	if profile.TotalPoints != 2*15 {
		t.Errorf("total points = %d, want 30", profile.TotalPoints)
	}
	if profile.CurrentStreak != 1 || profile.LongestStreak != 1 {
		t.Errorf("streak = %d/%d, want 1/1", profile.CurrentStreak, profile.LongestStreak)
	}
	if profile.LastQuizDate == nil {
		t.Error("last quiz date not set")
	}
}

func TestSubmitAcceptsFinalAnswer(t *testing.T) {
	env := newTestEnv(t)

	attempt := env.start(t, "easy", 2)
	questions, _ := env.quizRepo.GetQuizQuestions(attempt.QuizID)

	completed, err := env.attempts.Submit(attempt.ID, env.userID, questions[0].ID, "A")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if completed.Score != 1 {
		t.Errorf("score = %d, want 1 from final answer", completed.Score)
	}
}

func TestSubmitIgnoresUnknownFinalAnswer(t *testing.T) {
	env := newTestEnv(t)

	attempt := env.start(t, "easy", 2)

	completed, err := env.attempts.Submit(attempt.ID, env.userID, 9999, "A")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if completed.Score != 0 {
		t.Errorf("score = %d, want 0", completed.Score)
	}
}

func TestSubmitTwiceAwardsOnce(t *testing.T) {
	env := newTestEnv(t)

	attempt := env.start(t, "easy", 2)
	questions, _ := env.quizRepo.GetQuizQuestions(attempt.QuizID)
	if err := env.attempts.RecordAnswer(attempt.ID, env.userID, questions[0].ID, "A", 0, nil); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	if _, err := env.attempts.Submit(attempt.ID, env.userID, 0, ""); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	second, err := env.attempts.Submit(attempt.ID, env.userID, 0, "")
	if !errors.Is(err, ErrAttemptCompleted) {
		t.Fatalf("second submit err = %v, want ErrAttemptCompleted", err)
	}
	if second == nil || second.Status != models.AttemptCompleted {
		t.Error("second submit did not return the completed attempt")
	}

	profile, _ := env.profileRepo.GetByUserID(env.userID)
	if profile.TotalPoints != 10 {
		t.Errorf("total points = %d, want 10 (single award)", profile.TotalPoints)
	}
	if profile.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1", profile.CurrentStreak)
	}
}

func TestResultsAccessControl(t *testing.T) {
	env := newTestEnv(t)

	attempt := env.start(t, "easy", 2)
	if _, err := env.attempts.Submit(attempt.ID, env.userID, 0, ""); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Owner sees results
	results, err := env.attempts.Results(attempt.ID, env.userID, false)
	if err != nil {
		t.Fatalf("owner Results failed: %v", err)
	}
	if len(results.Breakdown) != 2 {
		t.Errorf("breakdown has %d entries, want 2", len(results.Breakdown))
	}

	// Another user is denied
	otherID := env.newUser(t, "bob")
	if _, err := env.attempts.Results(attempt.ID, otherID, false); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("err = %v, want ErrAccessDenied", err)
	}

	// An admin is allowed
	if _, err := env.attempts.Results(attempt.ID, otherID, true); err != nil {
		t.Fatalf("admin Results failed: %v", err)
	}
}

func TestResultsBreakdownDetail(t *testing.T) {
	env := newTestEnv(t)

	attempt := env.start(t, "easy", 2)
	questions, _ := env.quizRepo.GetQuizQuestions(attempt.QuizID)
	if err := env.attempts.RecordAnswer(attempt.ID, env.userID, questions[0].ID, "B", 0, nil); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	if _, err := env.attempts.Submit(attempt.ID, env.userID, 0, ""); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	results, err := env.attempts.Results(attempt.ID, env.userID, false)
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}

	first := results.Breakdown[0]
	if first.SelectedAnswer == nil || *first.SelectedAnswer != "B" {
		t.Errorf("selected = %v, want B", first.SelectedAnswer)
	}
	if first.IsCorrect {
		t.Error("wrong answer marked correct")
	}

	second := results.Breakdown[1]
	if second.SelectedAnswer != nil {
		t.Errorf("unanswered question has selected answer %v", second.SelectedAnswer)
	}
	if second.IsCorrect {
		t.Error("unanswered question marked correct")
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		attempt := env.start(t, "easy", 2)
		if _, err := env.attempts.Submit(attempt.ID, env.userID, 0, ""); err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
	}

	attempts, err := env.attempts.History(env.userID, 100)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(attempts) != 3 {
		t.Fatalf("got %d attempts, want 3", len(attempts))
	}
	for i := 1; i < len(attempts); i++ {
		if attempts[i].Attempt.ID > attempts[i-1].Attempt.ID {
			t.Error("history not newest first")
		}
	}
}

func TestTakingStateIncludesSavedAnswers(t *testing.T) {
	env := newTestEnv(t)

	attempt := env.start(t, "easy", 3)
	questions, _ := env.quizRepo.GetQuizQuestions(attempt.QuizID)
	if err := env.attempts.RecordAnswer(attempt.ID, env.userID, questions[1].ID, "C", 1, nil); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	state, err := env.attempts.GetForTaking(attempt.ID, env.userID)
	if err != nil {
		t.Fatalf("GetForTaking failed: %v", err)
	}
	if got := state.Answered[questions[1].ID]; got != "C" {
		t.Errorf("answered map = %q, want C", got)
	}
	if len(state.Questions) != 3 {
		t.Errorf("got %d questions, want 3", len(state.Questions))
	}
}
