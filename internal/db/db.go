package db

import (
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite3 "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

var conn *sqlx.DB

func InitDB() *sqlx.DB {
	dsn := os.Getenv("DATABASE_PATH")
	if dsn == "" {
		dsn = "gymarena.db"
	}

	database, err := sqlx.Connect("sqlite3", dsn+"?_journal_mode=WAL")
	if err != nil {
		log.Fatalln("Failed to connect to DB:", err)
	}

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Database connected.")
	conn = database
	return database
}

func GetDB() *sqlx.DB {
	return conn
}

// RunMigrations applies all pending migrations from ./migrations.
func RunMigrations(database *sqlx.DB) error {
	driver, err := migratesqlite3.WithInstance(database.DB, &migratesqlite3.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "sqlite3", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
