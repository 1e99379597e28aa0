/**
 * Staging store for the asynchronous recognition path
 *
 * Large documents and their batched results pass through a Google Cloud
 * Storage bucket. Objects are namespaced per run so concurrent pipelines can
 * share one bucket without collision. The store never deletes objects on its
 * own: the caller must garbage-collect the run namespace after completion or
 * failure via CleanupRun.
 */

package staging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/readvision/readvision/internal/logging"
)

// Store wraps one staging bucket
type Store struct {
	client *storage.Client
	bucket string
	logger *logging.Logger
}

// NewStore opens the named bucket, or creates a fresh temporary one when no
// name is given.
func NewStore(ctx context.Context, credentialsPath, bucketName string, logger *logging.Logger) (*Store, error) {
	client, err := storage.NewClient(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	store := &Store{
		client: client,
		bucket: bucketName,
		logger: logger,
	}

	if store.bucket == "" {
		store.bucket = fmt.Sprintf("ocr-temp-%d", time.Now().Unix())
		if err := store.createBucket(ctx, credentialsPath); err != nil {
			// Mirror of the upstream service behavior: an existing bucket
			// with the generated name is still usable.
			logger.Warn("bucket creation failed", "bucket", store.bucket, "error", err)
		} else {
			logger.Info("created staging bucket", "bucket", store.bucket)
		}
	}

	return store, nil
}

func (s *Store) createBucket(ctx context.Context, credentialsPath string) error {
	projectID, err := projectIDFromCredentials(credentialsPath)
	if err != nil {
		return err
	}
	return s.client.Bucket(s.bucket).Create(ctx, projectID, nil)
}

// projectIDFromCredentials reads the project_id field of a service-account
// credentials file.
func projectIDFromCredentials(credentialsPath string) (string, error) {
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return "", fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(raw, &creds); err != nil {
		return "", fmt.Errorf("failed to parse credentials: %w", err)
	}

	if creds.ProjectID == "" {
		return "", fmt.Errorf("credentials file has no project_id")
	}

	return creds.ProjectID, nil
}

// Bucket returns the staging bucket name
func (s *Store) Bucket() string {
	return s.bucket
}

// URI returns the gs:// reference for an object in the staging bucket
func (s *Store) URI(objectName string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName)
}

// InputObject names the staged input document for one run
func InputObject(runID, filename string) string {
	return path.Join("input", runID, filename)
}

// OutputPrefix names the result namespace for one run. The trailing slash
// keeps the backend writing result objects under the prefix.
func OutputPrefix(runID string) string {
	return "output/" + runID + "/"
}

// Put uploads an object and returns its gs:// reference
func (s *Store) Put(ctx context.Context, objectName string, r io.Reader) (string, error) {
	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload of %s: %w", objectName, err)
	}

	s.logger.Debug("uploaded staging object", "object", objectName)
	return s.URI(objectName), nil
}

// PutFile uploads a local file and returns its gs:// reference
func (s *Store) PutFile(ctx context.Context, objectName, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	return s.Put(ctx, objectName, f)
}

// List returns object names under a prefix, sorted by name. Listing order
// from the backend is not guaranteed to reflect page order; the object name
// is the only externally-stable ordering hint before page-number extraction.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		names = append(names, attrs.Name)
	}

	sort.Strings(names)
	return names, nil
}

// Get downloads one object
func (s *Store) Get(ctx context.Context, objectName string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", objectName, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", objectName, err)
	}

	return data, nil
}

// CleanupRun deletes every staged object belonging to one run. This is the
// documented post-run hook; the pipeline itself never calls it.
func (s *Store) CleanupRun(ctx context.Context, runID string) error {
	for _, prefix := range []string{path.Join("input", runID) + "/", OutputPrefix(runID)} {
		names, err := s.List(ctx, prefix)
		if err != nil {
			return err
		}
		for _, name := range names {
			if err := s.client.Bucket(s.bucket).Object(name).Delete(ctx); err != nil {
				return fmt.Errorf("failed to delete %s: %w", name, err)
			}
		}
	}

	s.logger.Info("staging namespace cleaned up", "run_id", runID)
	return nil
}

// Close releases the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}
