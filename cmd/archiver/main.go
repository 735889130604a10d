// Command archiver consumes published stories from Kafka and mirrors them
// into the S3 archive. It backstops the pipeline's direct archiving: stories
// published by other producers still end up in the archive.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"dalatbot/common"
	"dalatbot/config"
	"dalatbot/publish"
	"dalatbot/types"
)

func main() {
	_ = godotenv.Load()

	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		log.Fatal("KAFKA_BROKERS is required")
	}
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		log.Fatal("S3_BUCKET is required")
	}
	topic := config.GetEnvOrDefault("KAFKA_TOPIC", "news.stories")
	groupID := config.GetEnvOrDefault("KAFKA_GROUP_ID", "news-archiver")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := common.NewS3(ctx, common.S3Config{
		Region:       os.Getenv("AWS_REGION"),
		UsePathStyle: config.GetEnvBool("S3_PATH_STYLE", false),
	})
	if err != nil {
		log.Fatalf("failed to initialize S3: %v", err)
	}

	handler := &publish.JSONHandler[types.PublishedStory]{
		Validate: func(story *types.PublishedStory) bool {
			return story.RunID != "" && story.Content.Title != ""
		},
		Process: func(ctx context.Context, story *types.PublishedStory) error {
			return archiveStory(ctx, store, bucket, story)
		},
		// Malformed or incomplete payloads are skipped, not retried.
		AlwaysMark: true,
	}

	consumer, err := publish.NewConsumer(publish.ConsumerConfig{
		Brokers: strings.Split(brokers, ","),
		Topic:   topic,
		GroupID: groupID,
		Handler: handler,
	})
	if err != nil {
		log.Fatalf("failed to create Kafka consumer: %v", err)
	}
	defer consumer.Close()

	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("failed to start Kafka consumer: %v", err)
	}

	<-ctx.Done()
	log.Println("Shutting down archiver...")
}

// archiveStory writes the story to S3 unless an object with the same key
// already exists, keeping re-consumed messages idempotent.
func archiveStory(ctx context.Context, store *common.S3, bucket string, story *types.PublishedStory) error {
	slug := publish.Slugify(story.Content.SuggestedSlug)
	if slug == "" {
		slug = publish.Slugify(story.Content.Title)
	}
	key := publish.ArchiveKey(story.RunID, slug)

	exists, err := store.Exists(ctx, bucket, key)
	if err != nil {
		return err
	}
	if exists {
		log.Printf("Skipping %s: already archived", key)
		return nil
	}

	data, err := json.Marshal(story)
	if err != nil {
		return err
	}
	if err := store.PutJSON(ctx, bucket, key, data); err != nil {
		return err
	}
	log.Printf("Archived %s", key)
	return nil
}
