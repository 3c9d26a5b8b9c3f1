// Command import_certificates attaches a folder of certificate files to an
// existing event. The CSV manifest lists one file per row with an optional
// student name; names are matched to files by row, not by position in a
// separate list.
//
//	import_certificates -event 65f0c0ffee0000000000beef -manifest certs.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ArowuTest/event-showcase-backend/internal/config"
	"github.com/ArowuTest/event-showcase-backend/internal/logger"
	"github.com/ArowuTest/event-showcase-backend/internal/models"
	mongorepo "github.com/ArowuTest/event-showcase-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/event-showcase-backend/internal/services"
	"github.com/ArowuTest/event-showcase-backend/internal/storage"
	"github.com/ArowuTest/event-showcase-backend/internal/utils"
	"github.com/ArowuTest/event-showcase-backend/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func main() {
	eventHex := flag.String("event", "", "event id (hex)")
	manifestPath := flag.String("manifest", "", "CSV manifest with file and studentName columns")
	baseDir := flag.String("dir", "", "directory the manifest's file paths are relative to (default: manifest directory)")
	flag.Parse()

	if *eventHex == "" || *manifestPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	eventID, err := primitive.ObjectIDFromHex(*eventHex)
	if err != nil {
		log.Fatalf("Invalid event id: %v", err)
	}
	if *baseDir == "" {
		*baseDir = filepath.Dir(*manifestPath)
	}

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zlog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	timeout := config.GetEnvAsDuration("IMPORT_TIMEOUT", 5*time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := run(ctx, cfg, zlog, eventID, *manifestPath, *baseDir); err != nil {
		zlog.Fatal("Import failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zlog *zap.Logger, eventID primitive.ObjectID, manifestPath, baseDir string) error {
	manifest, err := os.Open(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	rows, err := utils.ParseCertificateManifest(manifest)
	_ = manifest.Close()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("manifest %s lists no files", manifestPath)
	}

	client, err := mongodb.Connect(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database, time.Duration(cfg.MongoDB.Timeout)*time.Second)
	if err != nil {
		return fmt.Errorf("MongoDB: %w", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	var blobs storage.BlobStore
	if cfg.Storage.Driver == "gcs" {
		gcsStore, err := storage.NewGCSStore(ctx, cfg.Storage.GCSBucket)
		if err != nil {
			return err
		}
		defer gcsStore.Close()
		blobs = gcsStore
	} else {
		local, err := storage.NewLocalStore(cfg.Storage.UploadDir)
		if err != nil {
			return err
		}
		blobs = local
	}

	parts := make([]storage.FilePart, 0, len(rows))
	keyed := make([]models.CertificateName, 0, len(rows))
	for i, row := range rows {
		path := row.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("line %d: %w", row.Line, err)
		}
		defer f.Close()

		parts = append(parts, storage.FilePart{Filename: filepath.Base(path), Content: f})
		keyed = append(keyed, models.CertificateName{FileIndex: i, StudentName: row.StudentName})
	}

	eventRepo := mongorepo.NewEventRepository(client.DB())
	svc := services.NewEventService(eventRepo, storage.NewIngestor(blobs, zlog), zlog)

	certs, err := svc.AppendCertificates(ctx, eventID, parts, nil, keyed)
	if err != nil {
		return err
	}
	for _, c := range certs[len(certs)-len(parts):] {
		zlog.Info("Certificate stored",
			zap.String("cert_id", c.ID.Hex()),
			zap.String("student", c.StudentName),
			zap.String("blob", storage.NameFromRef(c.CertURL)))
	}
	zlog.Info("Certificates imported",
		zap.String("event_id", eventID.Hex()),
		zap.Int("imported", len(parts)),
		zap.Int("total", len(certs)))
	return nil
}
