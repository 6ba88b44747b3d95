package model

import (
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	AuthProvider string    `json:"auth_provider,omitempty"`
	FullName     string    `json:"full_name,omitempty"`
	AvatarKey    string    `json:"avatar_key,omitempty"`
	Currency     string    `json:"currency"`
	MfaSecret    string    `json:"-"`
	MfaEnabled   bool      `json:"mfa_enabled"`
	LoginCount   int       `json:"login_count"`
	LastLoginAt  NullTime  `json:"last_login_at"`
	LastLoginIP  string    `json:"last_login_ip,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NullTime is an alias for sql.NullTime for better JSON handling.
type NullTime sql.NullTime

func (nt NullTime) MarshalJSON() ([]byte, error) {
	if !nt.Valid {
		return []byte("null"), nil
	}
	return nt.Time.MarshalJSON()
}

func (u *User) HashPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

func (u *User) CreateUser(db *sql.DB) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.AuthProvider == "" {
		u.AuthProvider = "local"
	}
	if u.Currency == "" {
		u.Currency = "IDR"
	}

	query := `
	INSERT INTO users (username, email, password, auth_provider, full_name, currency, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(u.Username, u.Email, u.Password, u.AuthProvider, u.FullName, u.Currency, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

const userColumns = `id, username, email, password, auth_provider, full_name, avatar_key, currency,
	mfa_secret, mfa_enabled, login_count, last_login_at, last_login_ip, created_at, updated_at`

func scanUser(row *sql.Row) (*User, error) {
	var user User
	var authProvider, fullName, avatarKey, lastLoginIP, mfaSecret sql.NullString
	var lastLoginAt sql.NullTime

	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Password,
		&authProvider, &fullName, &avatarKey, &user.Currency,
		&mfaSecret, &user.MfaEnabled, &user.LoginCount,
		&lastLoginAt, &lastLoginIP,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.AuthProvider = authProvider.String
	user.FullName = fullName.String
	user.AvatarKey = avatarKey.String
	user.LastLoginIP = lastLoginIP.String
	user.MfaSecret = mfaSecret.String
	user.LastLoginAt = NullTime(lastLoginAt)
	return &user, nil
}

func GetUserByID(db *sql.DB, id int64) (*User, error) {
	return scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func GetUserByEmail(db *sql.DB, email string) (*User, error) {
	return scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func GetUserByUsername(db *sql.DB, username string) (*User, error) {
	return scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (u *User) UpdateProfile(db *sql.DB) error {
	u.UpdatedAt = time.Now()
	query := `
	UPDATE users
	SET username = ?, full_name = ?, currency = ?, updated_at = ?
	WHERE id = ?`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(u.Username, u.FullName, u.Currency, u.UpdatedAt, u.ID)
	return err
}

func (u *User) UpdatePassword(db *sql.DB, newPasswordHash string) error {
	u.Password = newPasswordHash
	u.UpdatedAt = time.Now()

	query := `UPDATE users SET password = ?, updated_at = ? WHERE id = ?`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(u.Password, u.UpdatedAt, u.ID)
	return err
}

func (u *User) UpdateAvatarKey(db *sql.DB, avatarKey string) error {
	u.AvatarKey = avatarKey
	u.UpdatedAt = time.Now()

	query := `UPDATE users SET avatar_key = ?, updated_at = ? WHERE id = ?`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(u.AvatarKey, u.UpdatedAt, u.ID)
	return err
}

func (u *User) UpdateMfa(db *sql.DB, secret string, enabled bool) error {
	u.MfaSecret = secret
	u.MfaEnabled = enabled
	u.UpdatedAt = time.Now()

	query := `UPDATE users SET mfa_secret = ?, mfa_enabled = ?, updated_at = ? WHERE id = ?`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(u.MfaSecret, u.MfaEnabled, u.UpdatedAt, u.ID)
	return err
}

// DeleteUser removes the user row. Owned rows (sessions, transactions, budgets,
// goals, debts and their payments) are removed by the schema's ON DELETE CASCADE.
func DeleteUser(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.New("user not found")
	}
	return nil
}

// RecordLogin updates login stats and appends a login_history row in one transaction.
func RecordLogin(db *sql.DB, userID int64, clientIP, userAgent string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE users
		SET login_count = login_count + 1,
		    last_login_at = CURRENT_TIMESTAMP,
		    last_login_ip = ?
		WHERE id = ?`,
		clientIP, userID,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO login_history (user_id, ip_address, user_agent)
		VALUES (?, ?, ?)`,
		userID, clientIP, userAgent,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}
