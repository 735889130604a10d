package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"dalatbot/common"
	"dalatbot/types"
)

// S3Archiver writes each story to the durable archive under
// news/{runID}/{slug}.json. The archive is the audit trail for editorial
// review and reprocessing.
type S3Archiver struct {
	store  *common.S3
	bucket string
}

func NewS3Archiver(store *common.S3, bucket string) *S3Archiver {
	return &S3Archiver{store: store, bucket: bucket}
}

// ArchiveKey is the object key for one story. Exported so the archiver
// command builds identical keys.
func ArchiveKey(runID, slug string) string {
	return fmt.Sprintf("news/%s/%s.json", runID, slug)
}

func (a *S3Archiver) Publish(ctx context.Context, story types.PublishedStory) error {
	data, err := json.Marshal(story)
	if err != nil {
		return fmt.Errorf("publish: marshal story for archive: %w", err)
	}
	key := ArchiveKey(story.RunID, storyKey(story))
	if err := a.store.PutJSON(ctx, a.bucket, key, data); err != nil {
		return fmt.Errorf("publish: archive %s: %w", key, err)
	}
	return nil
}

func (a *S3Archiver) Close() error { return nil }
