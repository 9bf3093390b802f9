package storage

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classum/campus-backend/internal/config"
)

// Entry pairs a stored submission file with its submitter for archiving.
type Entry struct {
	UserCode string
	FileName string
	Ref      string
}

// Local stores submission payloads and export archives on the local
// filesystem under the configured assignment directory.
type Local struct {
	dir string
	log zerolog.Logger
}

// NewLocal creates a Local rooted at cfg.AssignmentDir.
func NewLocal(cfg *config.Config, log zerolog.Logger) *Local {
	return &Local{
		dir: cfg.AssignmentDir,
		log: log.With().Str("component", "storage").Logger(),
	}
}

// SubmissionRef returns the deterministic storage reference for a
// (class, user) pair. Resubmission overwrites the same path.
func (l *Local) SubmissionRef(classID, userID uuid.UUID) string {
	return filepath.Join(l.dir, "submissions", classID.String(), userID.String())
}

// Store writes a submission payload to its reference path.
func (l *Local) Store(ctx context.Context, ref string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(ref), 0o755); err != nil {
		return fmt.Errorf("create submission dir: %w", err)
	}
	if err := os.WriteFile(ref, data, 0o644); err != nil {
		return fmt.Errorf("write submission: %w", err)
	}
	return nil
}

// BuildArchive zips a class's submissions into one archive and returns
// its path. Re-exporting regenerates the archive in place.
func (l *Local) BuildArchive(ctx context.Context, classID uuid.UUID, entries []Entry) (string, error) {
	exportDir := filepath.Join(l.dir, "exports")
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	archivePath := filepath.Join(exportDir, classID.String()+".zip")
	f, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		if err := l.addEntry(zw, e); err != nil {
			zw.Close()
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finalize archive: %w", err)
	}

	l.log.Debug().
		Str("class_id", classID.String()).
		Int("entries", len(entries)).
		Msg("Archive built")
	return archivePath, nil
}

func (l *Local) addEntry(zw *zip.Writer, e Entry) error {
	src, err := os.Open(e.Ref)
	if err != nil {
		return fmt.Errorf("open submission %s: %w", e.Ref, err)
	}
	defer src.Close()

	dst, err := zw.Create(e.UserCode + "-" + e.FileName)
	if err != nil {
		return fmt.Errorf("add archive entry: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy submission %s: %w", e.Ref, err)
	}
	return nil
}
