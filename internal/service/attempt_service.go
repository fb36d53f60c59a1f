package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quizhub/internal/database"
	"quizhub/internal/generator"
	"quizhub/internal/models"
	"quizhub/internal/repository"
)

var (
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrSubcategoryNotFound = errors.New("subcategory not found")
	ErrAccessDenied        = errors.New("access denied")
	ErrInvalidQuestion     = errors.New("invalid question")
	ErrGenerationFailed    = errors.New("unable to generate quiz questions")

	// ErrAttemptCompleted signals that an attempt has already been
	// finalized. It is a benign outcome, not a failure: callers redirect
	// to the results page.
	ErrAttemptCompleted = errors.New("attempt already completed")
)

// secondsPerQuestion sets the quiz time limit from the question count
const secondsPerQuestion = 60

// AttemptService implements the quiz attempt lifecycle:
// start, record answers, submit, results.
type AttemptService struct {
	db          *database.DB
	generator   generator.Generator
	contentRepo *repository.ContentRepository
	quizRepo    *repository.QuizRepository
	attemptRepo *repository.AttemptRepository
	profileRepo *repository.ProfileRepository
}

// NewAttemptService creates a new attempt service
func NewAttemptService(
	db *database.DB,
	gen generator.Generator,
	contentRepo *repository.ContentRepository,
	quizRepo *repository.QuizRepository,
	attemptRepo *repository.AttemptRepository,
	profileRepo *repository.ProfileRepository,
) *AttemptService {
	return &AttemptService{
		db:          db,
		generator:   gen,
		contentRepo: contentRepo,
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		profileRepo: profileRepo,
	}
}

// Start generates a fresh quiz for the subcategory and creates an
// in-progress attempt for the user. Any abandoned in-progress attempt the
// user still has is deleted first, so a user has at most one active attempt.
func (s *AttemptService) Start(ctx context.Context, userID, subcategoryID int64, difficulty string, count int) (*models.QuizAttempt, error) {
	subcategory, err := s.contentRepo.GetSubcategory(subcategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subcategory: %w", err)
	}
	if subcategory == nil {
		return nil, ErrSubcategoryNotFound
	}

	if err := s.attemptRepo.DeleteInProgressForUser(userID); err != nil {
		return nil, fmt.Errorf("failed to clean up abandoned attempts: %w", err)
	}

	questions, err := s.generator.Generate(ctx, subcategory.Name, difficulty, count)
	if err != nil || len(questions) == 0 {
		return nil, ErrGenerationFailed
	}

	title := fmt.Sprintf("%s Quiz - %s", subcategory.Name, capitalize(difficulty))
	timeLimit := len(questions) * secondsPerQuestion

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	txQuizRepo := s.quizRepo.WithTx(tx)
	txAttemptRepo := s.attemptRepo.WithTx(tx)

	quiz, err := txQuizRepo.CreateQuiz(title, difficulty, subcategoryID, timeLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	for i, q := range questions {
		question := &models.Question{
			QuizID:        quiz.ID,
			QuestionText:  q.Question,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Order:         i,
		}
		if err := txQuizRepo.CreateQuestion(question); err != nil {
			return nil, fmt.Errorf("failed to create question: %w", err)
		}
	}

	attempt, err := txAttemptRepo.CreateAttempt(userID, quiz.ID, len(questions), timeLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit quiz creation: %w", err)
	}

	return attempt, nil
}

// TakingState is everything the take-quiz page needs to render
type TakingState struct {
	Attempt   *models.QuizAttempt
	Quiz      *models.Quiz
	Questions []models.Question
	Answered  map[int64]string // question ID -> selected letter
}

// GetForTaking loads an attempt for the take-quiz page, enforcing ownership
func (s *AttemptService) GetForTaking(attemptID, userID int64) (*TakingState, error) {
	attempt, err := s.attemptRepo.GetAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrAttemptNotFound
	}
	if attempt.UserID != userID {
		return nil, ErrAccessDenied
	}
	if attempt.IsCompleted() {
		return nil, ErrAttemptCompleted
	}

	quiz, err := s.quizRepo.GetQuiz(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	questions, err := s.quizRepo.GetQuizQuestions(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	answers, err := s.attemptRepo.GetAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	answered := make(map[int64]string, len(answers))
	for _, a := range answers {
		if a.SelectedAnswer != nil {
			answered[a.QuestionID] = *a.SelectedAnswer
		}
	}

	return &TakingState{
		Attempt:   attempt,
		Quiz:      quiz,
		Questions: questions,
		Answered:  answered,
	}, nil
}

// RecordAnswer upserts the user's answer to one question and persists the
// client-reported progress. Answers are mutable until submission: answering
// the same question again overwrites the previous answer.
//
// A nil timeRemaining leaves the stored time untouched; the handler passes
// nil whenever the client value does not parse as an integer.
func (s *AttemptService) RecordAnswer(attemptID, userID, questionID int64, selectedAnswer string, currentQuestion int, timeRemaining *int) error {
	attempt, err := s.attemptRepo.GetAttempt(attemptID)
	if err != nil {
		return err
	}
	if attempt == nil {
		return ErrAttemptNotFound
	}
	if attempt.UserID != userID {
		return ErrAccessDenied
	}
	if attempt.IsCompleted() {
		return ErrAttemptCompleted
	}

	if questionID != 0 && selectedAnswer != "" {
		question, err := s.quizRepo.GetQuestionInQuiz(questionID, attempt.QuizID)
		if err != nil {
			return err
		}
		if question == nil {
			return ErrInvalidQuestion
		}

		isCorrect := selectedAnswer == question.CorrectAnswer
		if err := s.upsertAnswerTx(attemptID, questionID, selectedAnswer, isCorrect); err != nil {
			return fmt.Errorf("failed to record answer: %w", err)
		}
	}

	// A submit may have completed the attempt while the answer was being
	// written. In that case the answer stands but the progress fields must
	// not be touched, and the caller is told to show results.
	status, err := s.attemptRepo.GetAttemptStatus(attemptID)
	if err != nil {
		return err
	}
	if status == models.AttemptCompleted {
		return ErrAttemptCompleted
	}

	return s.attemptRepo.UpdateProgress(attemptID, currentQuestion, timeRemaining)
}

// upsertAnswerTx runs the read-then-write answer upsert inside a transaction
// so concurrent saves of the same question cannot produce duplicate rows.
func (s *AttemptService) upsertAnswerTx(attemptID, questionID int64, selectedAnswer string, isCorrect bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.attemptRepo.WithTx(tx).UpsertAnswer(attemptID, questionID, selectedAnswer, isCorrect); err != nil {
		return err
	}
	return tx.Commit()
}

// Submit finalizes an attempt: optionally records one last answer, computes
// the score from the persisted correctness flags, marks the attempt
// completed, and updates the owner's points and streak.
//
// Completion is an atomic conditional update, so of two racing submits
// exactly one finalizes and awards points; the loser gets
// ErrAttemptCompleted and redirects to results like any late caller.
func (s *AttemptService) Submit(attemptID, userID, questionID int64, selectedAnswer string) (*models.QuizAttempt, error) {
	attempt, err := s.attemptRepo.GetAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrAttemptNotFound
	}
	if attempt.UserID != userID {
		return nil, ErrAccessDenied
	}
	if attempt.IsCompleted() {
		return attempt, ErrAttemptCompleted
	}

	// Record the final answer if one was sent along with the submit.
	// An unknown question is ignored rather than failing the submission.
	if questionID != 0 && selectedAnswer != "" {
		question, err := s.quizRepo.GetQuestionInQuiz(questionID, attempt.QuizID)
		if err != nil {
			return nil, err
		}
		if question != nil {
			isCorrect := selectedAnswer == question.CorrectAnswer
			if err := s.upsertAnswerTx(attemptID, questionID, selectedAnswer, isCorrect); err != nil {
				return nil, fmt.Errorf("failed to record final answer: %w", err)
			}
		}
	}

	quiz, err := s.quizRepo.GetQuiz(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	txAttemptRepo := s.attemptRepo.WithTx(tx)
	txProfileRepo := s.profileRepo.WithTx(tx)

	score, err := txAttemptRepo.CountCorrectAnswers(attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute score: %w", err)
	}

	now := time.Now()
	won, err := txAttemptRepo.CompleteIfInProgress(attemptID, score, now)
	if err != nil {
		return nil, fmt.Errorf("failed to complete attempt: %w", err)
	}
	if !won {
		tx.Rollback()
		completed, err := s.attemptRepo.GetAttempt(attemptID)
		if err != nil {
			return nil, err
		}
		return completed, ErrAttemptCompleted
	}

	profile, err := txProfileRepo.GetOrCreate(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	profile.TotalPoints += score * models.PointsPerCorrect(quiz.Difficulty)
	profile.ApplyStreak(now)

	if err := txProfileRepo.UpdateProgress(profile); err != nil {
		return nil, fmt.Errorf("failed to update profile progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit submission: %w", err)
	}

	return s.attemptRepo.GetAttempt(attemptID)
}

// AttemptResults is the scored breakdown shown on the results page
type AttemptResults struct {
	Attempt   *models.QuizAttempt
	Quiz      *models.Quiz
	Breakdown []models.QuestionResult
}

// Results returns the per-question breakdown for an attempt. Only the
// attempt's owner and quiz admins may view it.
func (s *AttemptService) Results(attemptID, requesterID int64, isAdmin bool) (*AttemptResults, error) {
	attempt, err := s.attemptRepo.GetAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrAttemptNotFound
	}
	if attempt.UserID != requesterID && !isAdmin {
		return nil, ErrAccessDenied
	}

	quiz, err := s.quizRepo.GetQuiz(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	questions, err := s.quizRepo.GetQuizQuestions(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	answers, err := s.attemptRepo.GetAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[int64]models.UserAnswer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	// Correctness comes from the persisted flags, not a re-comparison, so
	// results stay stable even if questions are edited later.
	breakdown := make([]models.QuestionResult, 0, len(questions))
	for _, q := range questions {
		result := models.QuestionResult{Question: q}
		if a, ok := byQuestion[q.ID]; ok {
			result.SelectedAnswer = a.SelectedAnswer
			result.IsCorrect = a.IsCorrect
		}
		breakdown = append(breakdown, result)
	}

	return &AttemptResults{
		Attempt:   attempt,
		Quiz:      quiz,
		Breakdown: breakdown,
	}, nil
}

// History returns the user's attempts, newest first
func (s *AttemptService) History(userID int64, limit int) ([]models.AttemptWithQuiz, error) {
	return s.attemptRepo.ListForUser(userID, limit)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
