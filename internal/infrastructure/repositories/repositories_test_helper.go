package repositories

import (
	"fmt"
	"testing"
	"time"

	"bookmarket.backend/internal/domain/entities"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

// createSchema mirrors the Postgres tables closely enough for repository tests.
// Foreign keys are left out so the repositories' explicit cascades are what
// the tests observe.
func createSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		email_verified_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE seller_profiles (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		store_name TEXT NOT NULL,
		bio TEXT,
		location TEXT,
		average_rating REAL,
		total_ratings INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE books (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		isbn TEXT,
		description TEXT,
		condition TEXT NOT NULL,
		price REAL NOT NULL,
		status TEXT NOT NULL,
		image_key TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE reservations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		book_id TEXT NOT NULL,
		seller_id TEXT NOT NULL,
		status TEXT NOT NULL,
		message TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE seller_ratings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		seller_id TEXT NOT NULL,
		rating INTEGER NOT NULL,
		comment TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE(user_id, seller_id)
	);`)
	mustExec(t, db, `CREATE TABLE wishlist_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		book_id TEXT NOT NULL,
		created_at DATETIME,
		UNIQUE(user_id, book_id)
	);`)
	mustExec(t, db, `CREATE TABLE verification_tokens (
		id TEXT PRIMARY KEY,
		identifier TEXT NOT NULL,
		token TEXT NOT NULL UNIQUE,
		purpose TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		consumed_at DATETIME,
		created_at DATETIME
	);`)
}

type fixture struct {
	t  *testing.T
	db *gorm.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	createSchema(t, db)
	return &fixture{t: t, db: db}
}

func (f *fixture) user(email string, role entities.UserRole) uuid.UUID {
	f.t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	mustExec(f.t, f.db, `INSERT INTO users(id,email,name,password_hash,role,created_at,updated_at) VALUES (?,?,?,?,?,?,?)`,
		id.String(), email, "Name", "hash", string(role), now, now)
	return id
}

func (f *fixture) seller(userID uuid.UUID) uuid.UUID {
	f.t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	mustExec(f.t, f.db, `INSERT INTO seller_profiles(id,user_id,store_name,total_ratings,created_at,updated_at) VALUES (?,?,?,?,?,?)`,
		id.String(), userID.String(), "Store", 0, now, now)
	return id
}

func (f *fixture) book(sellerID uuid.UUID, title string, status entities.BookStatus, imageKey *string) uuid.UUID {
	f.t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	mustExec(f.t, f.db, `INSERT INTO books(id,seller_id,title,author,description,condition,price,status,image_key,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		id.String(), sellerID.String(), title, "Author", "", string(entities.BookConditionUsed), 10.5, string(status), imageKey, now, now)
	return id
}

func (f *fixture) reservation(userID, bookID, sellerID uuid.UUID, status entities.ReservationStatus) uuid.UUID {
	f.t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	mustExec(f.t, f.db, `INSERT INTO reservations(id,user_id,book_id,seller_id,status,message,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?)`,
		id.String(), userID.String(), bookID.String(), sellerID.String(), string(status), "", now, now)
	return id
}

func (f *fixture) rating(userID, sellerID uuid.UUID, score int) uuid.UUID {
	f.t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	mustExec(f.t, f.db, `INSERT INTO seller_ratings(id,user_id,seller_id,rating,comment,created_at,updated_at) VALUES (?,?,?,?,?,?,?)`,
		id.String(), userID.String(), sellerID.String(), score, "", now, now)
	return id
}

func (f *fixture) wish(userID, bookID uuid.UUID) {
	f.t.Helper()
	mustExec(f.t, f.db, `INSERT INTO wishlist_items(id,user_id,book_id,created_at) VALUES (?,?,?,?)`,
		uuid.New().String(), userID.String(), bookID.String(), time.Now().UTC())
}

func (f *fixture) count(table, where string, args ...interface{}) int64 {
	f.t.Helper()
	var n int64
	q := f.db.Table(table)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(f.t, q.Count(&n).Error)
	return n
}
