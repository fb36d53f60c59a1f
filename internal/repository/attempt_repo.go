package repository

import (
	"database/sql"
	"strings"
	"time"

	"quizhub/internal/database"
	"quizhub/internal/models"
)

// prefixColumns qualifies each column in a comma-separated list with a table alias
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

// AttemptRepository handles database operations for quiz attempts and answers
type AttemptRepository struct {
	db database.DBTX
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db database.DBTX) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *AttemptRepository) WithTx(tx *database.Tx) *AttemptRepository {
	return &AttemptRepository{db: tx}
}

const attemptColumns = `id, user_id, quiz_id, score, total_questions, status,
	started_at, completed_at, current_question, time_remaining`

func scanAttempt(row interface{ Scan(...interface{}) error }) (*models.QuizAttempt, error) {
	a := &models.QuizAttempt{}
	var completedAt sql.NullTime
	var timeRemaining sql.NullInt64

	err := row.Scan(
		&a.ID, &a.UserID, &a.QuizID, &a.Score, &a.TotalQuestions, &a.Status,
		&a.StartedAt, &completedAt, &a.CurrentQuestion, &timeRemaining,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	if timeRemaining.Valid {
		tr := int(timeRemaining.Int64)
		a.TimeRemaining = &tr
	}
	return a, nil
}

// CreateAttempt inserts a new in-progress attempt
func (r *AttemptRepository) CreateAttempt(userID, quizID int64, totalQuestions, timeRemaining int) (*models.QuizAttempt, error) {
	query := `
		INSERT INTO quiz_attempts (user_id, quiz_id, total_questions, status, time_remaining)
		VALUES (?, ?, ?, 'in_progress', ?)
	`
	id, err := r.db.ExecReturningID(query, userID, quizID, totalQuestions, timeRemaining)
	if err != nil {
		return nil, err
	}
	return r.GetAttempt(id)
}

// GetAttempt retrieves an attempt by ID, or nil if not found
func (r *AttemptRepository) GetAttempt(id int64) (*models.QuizAttempt, error) {
	query := "SELECT " + attemptColumns + " FROM quiz_attempts WHERE id = ?"
	return scanAttempt(r.db.QueryRow(query, id))
}

// GetAttemptStatus re-reads only the status column. Used to detect an
// attempt completed by a concurrent request after an answer write.
func (r *AttemptRepository) GetAttemptStatus(id int64) (string, error) {
	var status string
	err := r.db.QueryRow("SELECT status FROM quiz_attempts WHERE id = ?", id).Scan(&status)
	return status, err
}

// DeleteInProgressForUser removes the user's abandoned in-progress attempts.
// Called when the same user starts a new quiz; at most one such attempt
// exists at a time.
func (r *AttemptRepository) DeleteInProgressForUser(userID int64) error {
	_, err := r.db.Exec("DELETE FROM quiz_attempts WHERE user_id = ? AND status = 'in_progress'", userID)
	return err
}

// UpsertAnswer records the selected answer for a question, overwriting any
// previous answer for the same (attempt, question) pair. Last answer wins.
func (r *AttemptRepository) UpsertAnswer(attemptID, questionID int64, selectedAnswer string, isCorrect bool) error {
	var existingID int64
	err := r.db.QueryRow(
		"SELECT id FROM user_answers WHERE attempt_id = ? AND question_id = ?",
		attemptID, questionID,
	).Scan(&existingID)

	if err == sql.ErrNoRows {
		_, err = r.db.Exec(
			"INSERT INTO user_answers (attempt_id, question_id, selected_answer, is_correct) VALUES (?, ?, ?, ?)",
			attemptID, questionID, selectedAnswer, isCorrect,
		)
		return err
	}
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		"UPDATE user_answers SET selected_answer = ?, is_correct = ? WHERE id = ?",
		selectedAnswer, isCorrect, existingID,
	)
	return err
}

// UpdateProgress persists the client-reported position within the quiz.
// A nil timeRemaining leaves the stored value unchanged.
func (r *AttemptRepository) UpdateProgress(attemptID int64, currentQuestion int, timeRemaining *int) error {
	if timeRemaining == nil {
		_, err := r.db.Exec("UPDATE quiz_attempts SET current_question = ? WHERE id = ?", currentQuestion, attemptID)
		return err
	}
	_, err := r.db.Exec(
		"UPDATE quiz_attempts SET current_question = ?, time_remaining = ? WHERE id = ?",
		currentQuestion, *timeRemaining, attemptID,
	)
	return err
}

// CompleteIfInProgress finalizes an attempt with its score, but only if it
// is still in progress. Returns false when another request completed it
// first, which makes double-scoring impossible.
func (r *AttemptRepository) CompleteIfInProgress(attemptID int64, score int, completedAt time.Time) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE quiz_attempts
		SET score = ?, status = 'completed', completed_at = ?
		WHERE id = ? AND status = 'in_progress'
	`, score, completedAt, attemptID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CountCorrectAnswers counts the persisted correct answers for an attempt.
// This is the attempt's score: unanswered questions contribute nothing.
func (r *AttemptRepository) CountCorrectAnswers(attemptID int64) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM user_answers WHERE attempt_id = ? AND is_correct = ?",
		attemptID, true,
	).Scan(&count)
	return count, err
}

// GetAnswers returns all answers recorded for an attempt
func (r *AttemptRepository) GetAnswers(attemptID int64) ([]models.UserAnswer, error) {
	query := "SELECT id, attempt_id, question_id, selected_answer, is_correct FROM user_answers WHERE attempt_id = ?"
	rows, err := r.db.Query(query, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []models.UserAnswer
	for rows.Next() {
		var a models.UserAnswer
		var selected sql.NullString
		if err := rows.Scan(&a.ID, &a.AttemptID, &a.QuestionID, &selected, &a.IsCorrect); err != nil {
			return nil, err
		}
		if selected.Valid {
			a.SelectedAnswer = &selected.String
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// ListForUser returns a user's attempts with quiz details, newest first
func (r *AttemptRepository) ListForUser(userID int64, limit int) ([]models.AttemptWithQuiz, error) {
	query := `
		SELECT ` + prefixColumns("a", attemptColumns) + `,
		       q.id, q.title, q.difficulty, q.subcategory_id, q.time_limit, q.created_at
		FROM quiz_attempts a
		JOIN quizzes q ON q.id = a.quiz_id
		WHERE a.user_id = ?
		ORDER BY a.started_at DESC, a.id DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttemptsWithQuiz(rows, false)
}

// ListAll returns every attempt with quiz and user details, for the admin panel
func (r *AttemptRepository) ListAll() ([]models.AttemptWithQuiz, error) {
	query := `
		SELECT ` + prefixColumns("a", attemptColumns) + `,
		       q.id, q.title, q.difficulty, q.subcategory_id, q.time_limit, q.created_at,
		       u.username
		FROM quiz_attempts a
		JOIN quizzes q ON q.id = a.quiz_id
		JOIN users u ON u.id = a.user_id
		ORDER BY a.started_at DESC, a.id DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttemptsWithQuiz(rows, true)
}

func scanAttemptsWithQuiz(rows *sql.Rows, withUser bool) ([]models.AttemptWithQuiz, error) {
	var results []models.AttemptWithQuiz
	for rows.Next() {
		var item models.AttemptWithQuiz
		var completedAt sql.NullTime
		var timeRemaining sql.NullInt64

		dest := []interface{}{
			&item.Attempt.ID, &item.Attempt.UserID, &item.Attempt.QuizID,
			&item.Attempt.Score, &item.Attempt.TotalQuestions, &item.Attempt.Status,
			&item.Attempt.StartedAt, &completedAt, &item.Attempt.CurrentQuestion, &timeRemaining,
			&item.Quiz.ID, &item.Quiz.Title, &item.Quiz.Difficulty,
			&item.Quiz.SubcategoryID, &item.Quiz.TimeLimit, &item.Quiz.CreatedAt,
		}
		if withUser {
			dest = append(dest, &item.Username)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		if completedAt.Valid {
			item.Attempt.CompletedAt = &completedAt.Time
		}
		if timeRemaining.Valid {
			tr := int(timeRemaining.Int64)
			item.Attempt.TimeRemaining = &tr
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

// UserAttemptStats aggregates a user's attempt history for the dashboard
type UserAttemptStats struct {
	CompletedCount  int
	InProgressCount int
	TotalScore      int
	TotalQuestions  int
}

// StatsForUser computes completed/in-progress counts and score totals
func (r *AttemptRepository) StatsForUser(userID int64) (*UserAttemptStats, error) {
	stats := &UserAttemptStats{}
	err := r.db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN score ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN total_questions ELSE 0 END), 0)
		FROM quiz_attempts
		WHERE user_id = ?
	`, userID).Scan(&stats.CompletedCount, &stats.InProgressCount, &stats.TotalScore, &stats.TotalQuestions)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// CountCompleted returns the number of completed attempts across all users
func (r *AttemptRepository) CountCompleted() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM quiz_attempts WHERE status = 'completed'").Scan(&count)
	return count, err
}

// DeleteAttempt removes an attempt; its answers cascade
func (r *AttemptRepository) DeleteAttempt(id int64) error {
	_, err := r.db.Exec("DELETE FROM quiz_attempts WHERE id = ?", id)
	return err
}
