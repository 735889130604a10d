package pipeline

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"dalatbot/ai"
	"dalatbot/cluster"
	"dalatbot/common"
	"dalatbot/config"
	"dalatbot/dedupe"
	"dalatbot/linker"
	"dalatbot/publish"
	"dalatbot/synthesis"
)

// Options selects what BuildFromEnv wires up.
type Options struct {
	SourcesPath string
	// DryRun disables publishing; everything else still runs.
	DryRun bool
}

// BuildFromEnv assembles a pipeline from environment configuration. Optional
// infrastructure that is not configured or not reachable is disabled with a
// warning rather than failing startup; only the source registry and the
// text-generation credentials are mandatory. The returned cleanup must be
// called when the process is done with the pipeline.
func BuildFromEnv(ctx context.Context, opts Options) (*Pipeline, func(), error) {
	registry, err := config.LoadRegistry(opts.SourcesPath)
	if err != nil {
		return nil, nil, err
	}

	gen := ai.NewClientFromEnv()

	var redisClient *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASS"),
		})
	}

	var seen *dedupe.SeenFilter
	if redisClient != nil {
		seen, err = dedupe.NewSeenFilter(ctx, redisClient, dedupe.SeenConfig{})
		if err != nil {
			log.Printf("Warning: seen filter disabled: %v", err)
			seen = nil
		}
	}
	embeddings := dedupe.NewEmbeddingsFromEnv()

	var filter *dedupe.Filter
	if seen != nil || embeddings != nil {
		filter = dedupe.NewFilter(seen, embeddings)
	} else {
		log.Println("Warning: deduplication disabled (no Redis, no embeddings)")
	}

	var provider linker.EntityProvider
	if base := os.Getenv("PLATFORM_API_URL"); base != "" {
		provider = linker.NewPlatformClient(strings.TrimRight(base, "/"))
	}
	dict := linker.NewCachedDictionary(provider, redisClient, "", config.DictionaryTTL)

	publisher, err := buildPublisher(ctx, opts.DryRun)
	if err != nil {
		cleanupRedis(redisClient)
		return nil, nil, err
	}

	p := &Pipeline{
		Registry:  registry,
		Filter:    filter,
		Clusterer: cluster.NewClusterer(gen),
		Processor: synthesis.NewProcessor(gen),
		Linker:    linker.New(dict),
		Publisher: publisher,
	}

	cleanup := func() {
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				log.Printf("Warning: publisher close failed: %v", err)
			}
		}
		cleanupRedis(redisClient)
	}
	return p, cleanup, nil
}

func buildPublisher(ctx context.Context, dryRun bool) (publish.Publisher, error) {
	if dryRun {
		log.Println("Dry run: publishing disabled")
		return nil, nil
	}

	var publishers []publish.Publisher

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		topic := config.GetEnvOrDefault("KAFKA_TOPIC", "news.stories")
		kp, err := publish.NewKafkaPublisher(strings.Split(brokers, ","), topic)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, kp)
	}

	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		store, err := common.NewS3(ctx, common.S3Config{
			Region:       os.Getenv("AWS_REGION"),
			UsePathStyle: config.GetEnvBool("S3_PATH_STYLE", false),
		})
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, publish.NewS3Archiver(store, bucket))
	}

	if len(publishers) == 0 {
		log.Println("Warning: no publisher configured, stories will only appear in the run report")
		return nil, nil
	}
	return publish.NewMulti(publishers...), nil
}

func cleanupRedis(client *redis.Client) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		log.Printf("Warning: redis close failed: %v", err)
	}
}
