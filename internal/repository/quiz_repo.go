package repository

import (
	"database/sql"
	"time"

	"quizhub/internal/database"
	"quizhub/internal/models"
)

// QuizRepository handles database operations for quizzes and their questions
type QuizRepository struct {
	db database.DBTX
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db database.DBTX) *QuizRepository {
	return &QuizRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *QuizRepository) WithTx(tx *database.Tx) *QuizRepository {
	return &QuizRepository{db: tx}
}

// CreateQuiz inserts a quiz and returns it with its ID set
func (r *QuizRepository) CreateQuiz(title, difficulty string, subcategoryID int64, timeLimit int) (*models.Quiz, error) {
	query := `
		INSERT INTO quizzes (title, difficulty, subcategory_id, time_limit)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, title, difficulty, subcategoryID, timeLimit)
	if err != nil {
		return nil, err
	}
	return &models.Quiz{
		ID:            id,
		Title:         title,
		Difficulty:    difficulty,
		SubcategoryID: subcategoryID,
		TimeLimit:     timeLimit,
		CreatedAt:     time.Now(),
	}, nil
}

// GetQuiz retrieves a quiz by ID, or nil if not found
func (r *QuizRepository) GetQuiz(id int64) (*models.Quiz, error) {
	query := "SELECT id, title, difficulty, subcategory_id, time_limit, created_at FROM quizzes WHERE id = ?"
	q := &models.Quiz{}
	err := r.db.QueryRow(query, id).Scan(
		&q.ID, &q.Title, &q.Difficulty, &q.SubcategoryID, &q.TimeLimit, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// CreateQuestion inserts a question for a quiz at the given order position
func (r *QuizRepository) CreateQuestion(q *models.Question) error {
	query := `
		INSERT INTO questions
			(quiz_id, question_text, option_a, option_b, option_c, option_d,
			 correct_answer, explanation, question_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, q.QuizID, q.QuestionText,
		q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.CorrectAnswer, q.Explanation, q.Order)
	if err != nil {
		return err
	}
	q.ID = id
	return nil
}

const questionColumns = `id, quiz_id, question_text, option_a, option_b,
	option_c, option_d, correct_answer, explanation, question_order`

func scanQuestion(row interface{ Scan(...interface{}) error }) (*models.Question, error) {
	q := &models.Question{}
	err := row.Scan(
		&q.ID, &q.QuizID, &q.QuestionText,
		&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD,
		&q.CorrectAnswer, &q.Explanation, &q.Order,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetQuizQuestions returns a quiz's questions in presentation order
func (r *QuizRepository) GetQuizQuestions(quizID int64) ([]models.Question, error) {
	query := "SELECT " + questionColumns + " FROM questions WHERE quiz_id = ? ORDER BY question_order"
	rows, err := r.db.Query(query, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// GetQuestionInQuiz retrieves one question, verifying it belongs to the quiz
func (r *QuizRepository) GetQuestionInQuiz(questionID, quizID int64) (*models.Question, error) {
	query := "SELECT " + questionColumns + " FROM questions WHERE id = ? AND quiz_id = ?"
	return scanQuestion(r.db.QueryRow(query, questionID, quizID))
}

// ListQuizzes returns all quizzes newest first, for the admin panel
func (r *QuizRepository) ListQuizzes() ([]models.Quiz, error) {
	query := "SELECT id, title, difficulty, subcategory_id, time_limit, created_at FROM quizzes ORDER BY created_at DESC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []models.Quiz
	for rows.Next() {
		var q models.Quiz
		if err := rows.Scan(&q.ID, &q.Title, &q.Difficulty, &q.SubcategoryID, &q.TimeLimit, &q.CreatedAt); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// DeleteQuiz removes a quiz; questions and attempts cascade
func (r *QuizRepository) DeleteQuiz(id int64) error {
	_, err := r.db.Exec("DELETE FROM quizzes WHERE id = ?", id)
	return err
}

// CountQuizzes returns the total number of quizzes
func (r *QuizRepository) CountQuizzes() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM quizzes").Scan(&count)
	return count, err
}
