package repository

import "restaurant-floor/internal/common/db"

type Repository struct {
	ArchiveRepo ArchiveRepositoryInterface
}

func New(conn *db.Conn) *Repository {
	return &Repository{
		ArchiveRepo: NewArchiveRepository(conn),
	}
}
