package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/actuallystonmai/video-recommendation-service/internal/logging"
	"github.com/jackc/pgx/v5/pgxpool"
)

// category groups interest tags that co-occur in seeded videos.
type category struct {
	name  string
	tags  []string
	lines []string
	music []string
}

var categories = []category{
	{
		name:  "food",
		tags:  []string{"cooking", "baking", "street_food"},
		lines: []string{"15 minute weeknight dinner", "sourdough from scratch", "night market tour", "one pan pasta", "grandma's dumpling recipe"},
		music: []string{"Kitchen Beats", "Lo-fi Simmer"},
	},
	{
		name:  "fitness",
		tags:  []string{"workout", "yoga", "running"},
		lines: []string{"full body routine, no equipment", "morning stretch flow", "couch to 5k week 3", "core burner", "marathon taper tips"},
		music: []string{"Pump It", "Breathe In"},
	},
	{
		name:  "gaming",
		tags:  []string{"gaming", "speedrun", "esports"},
		lines: []string{"any% world record attempt", "ranked climb highlights", "hidden boss strategy", "tournament finals recap", "retro console haul"},
		music: []string{"8-bit Anthem", "Boss Fight"},
	},
	{
		name:  "travel",
		tags:  []string{"travel", "hiking", "street_food"},
		lines: []string{"48 hours in Lisbon", "summit at sunrise", "budget backpacking Vietnam", "hidden beaches", "train across the Alps"},
		music: []string{"Wanderlust", "Open Road"},
	},
	{
		name:  "music",
		tags:  []string{"music", "guitar", "dance"},
		lines: []string{"fingerstyle cover", "new choreography drop", "studio session vlog", "learn this riff in 60s", "street performance"},
		music: []string{"Original Sound", "Acoustic Session"},
	},
}

const (
	numUsers   = 20
	numAuthors = 40
	numVideos  = 240
)

// Setup truncates and reseeds all tables deterministically.
func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	rng := rand.New(rand.NewSource(42))
	now := time.Now()

	logging.Info().Msg("[seed] truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE recommendations, user_activity, user_tags, tag_mappings, videos, user_profiles RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	logging.Info().Int("count", numUsers).Msg("[seed] inserting users")
	interests, err := seedUsers(ctx, pool, rng, numUsers)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	logging.Info().Msg("[seed] inserting tag mappings")
	if err := seedTagMappings(ctx, pool, rng, interests); err != nil {
		return fmt.Errorf("seed tag mappings: %w", err)
	}

	logging.Info().Int("count", numVideos).Msg("[seed] inserting videos")
	byCategory, err := seedVideos(ctx, pool, rng, now, numVideos)
	if err != nil {
		return fmt.Errorf("seed videos: %w", err)
	}

	logging.Info().Msg("[seed] inserting activity")
	if err := seedActivity(ctx, pool, rng, interests, byCategory); err != nil {
		return fmt.Errorf("seed activity: %w", err)
	}

	logging.Info().Msg("[seed] seeding complete")
	return nil
}

// seedUsers returns the interest categories chosen for each user id.
func seedUsers(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) (map[int64][]int, error) {
	regions := []string{"US", "GB", "CA", "AU", "DE", "FR", "JP", "BR"}
	interests := make(map[int64][]int, n)

	var rows [][]any
	for i := range n {
		primary := rng.Intn(len(categories))
		secondary := (primary + 1 + rng.Intn(len(categories)-1)) % len(categories)
		interests[int64(i+1)] = []int{primary, secondary}

		followers := int64(powerLaw(rng, 2_000_000))
		rows = append(rows, []any{
			fmt.Sprintf("creator%02d", i+1),
			fmt.Sprintf("%s and %s content", categories[primary].name, categories[secondary].name),
			followers,
			int64(rng.Intn(900) + 50),
			int64(rng.Intn(400) + 5),
			regions[rng.Intn(len(regions))],
			"en",
			time.Now().AddDate(0, 0, -rng.Intn(365)),
		})
	}

	err := insertRows(ctx, pool, "user_profiles",
		[]string{"username", "bio", "follower_count", "following_count", "video_count", "region", "language", "created_at"}, rows)
	return interests, err
}

func seedTagMappings(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, interests map[int64][]int) error {
	var rows [][]any
	for userID := int64(1); userID <= int64(len(interests)); userID++ {
		seen := make(map[string]bool)
		for rank, ci := range interests[userID] {
			c := categories[ci]
			for _, tag := range c.tags {
				if seen[tag] {
					continue
				}
				seen[tag] = true
				// primary interests start higher than secondary ones
				base := 0.55 - 0.2*float64(rank) + rng.Float64()*0.35
				rows = append(rows, []any{
					userID, tag, c.name, math.Round(base*100) / 100,
					fmt.Sprintf("bio mentions %s", c.name),
				})
			}
		}
	}
	return insertRows(ctx, pool, "tag_mappings",
		[]string{"user_id", "tag", "category", "affinity", "reason"}, rows)
}

// seedVideos returns video ids grouped by category index.
func seedVideos(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, now time.Time, n int) (map[int][]string, error) {
	byCategory := make(map[int][]string)

	var rows [][]any
	for i := range n {
		ci := i % len(categories)
		c := categories[ci]
		tag := c.tags[rng.Intn(len(c.tags))]
		id := fmt.Sprintf("73%08d", i+1)
		author := fmt.Sprintf("author%02d", rng.Intn(numAuthors)+1)

		plays := uint64(powerLaw(rng, 20_000_000))
		likes := uint64(float64(plays) * (0.01 + rng.Float64()*0.14))
		comments := uint64(float64(likes) * (0.02 + rng.Float64()*0.08))
		shares := uint64(float64(likes) * (0.01 + rng.Float64()*0.1))

		var createTime *int64
		if rng.Float64() > 0.05 {
			ts := now.Add(-time.Duration(rng.Intn(200*24)) * time.Hour).Unix()
			createTime = &ts
		}

		hashtags := []string{tag, "fyp"}
		if extra := c.tags[rng.Intn(len(c.tags))]; extra != tag {
			hashtags = append(hashtags, extra)
		}

		rows = append(rows, []any{
			id,
			c.lines[rng.Intn(len(c.lines))],
			author,
			fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", author, id),
			createTime,
			int64(plays), int64(likes), int64(comments), int64(shares),
			hashtags,
			c.music[rng.Intn(len(c.music))],
			strings.ReplaceAll(tag, "_", " ") + " videos",
			[]string{tag},
		})
		byCategory[ci] = append(byCategory[ci], id)
	}

	err := insertRows(ctx, pool, "videos",
		[]string{"id", "description", "author", "url", "create_time", "plays", "likes", "comments", "shares",
			"hashtags", "music_title", "source_query", "source_tags"}, rows)
	return byCategory, err
}

func seedActivity(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, interests map[int64][]int, byCategory map[int][]string) error {
	kinds := []string{"post", "repost", "like"}
	kindWeights := []float64{0.2, 0.2, 0.6}

	seen := make(map[string]bool)
	var rows [][]any
	for userID := int64(1); userID <= int64(len(interests)); userID++ {
		for range 6 + rng.Intn(10) {
			// mostly primary interest
			ci := interests[userID][0]
			if rng.Float64() < 0.3 {
				ci = interests[userID][1]
			}
			ids := byCategory[ci]
			videoID := ids[rng.Intn(len(ids))]
			kind := weightedChoice(rng, kinds, kindWeights)

			key := fmt.Sprintf("%d/%s/%s", userID, videoID, kind)
			if seen[key] {
				continue
			}
			seen[key] = true

			rows = append(rows, []any{userID, videoID, kind, time.Now().AddDate(0, 0, -rng.Intn(90))})
		}
	}
	return insertRows(ctx, pool, "user_activity",
		[]string{"user_id", "video_id", "kind", "created_at"}, rows)
}

// insertRows writes rows with one multi-row INSERT.
func insertRows(ctx context.Context, pool *pgxpool.Pool, table string, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*len(cols))
	for _, row := range rows {
		placeholders := make([]string, len(row))
		for j := range row {
			placeholders[j] = fmt.Sprintf("$%d", len(args)+j+1)
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
		args = append(args, row...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(cols, ", "), strings.Join(values, ", "))
	_, err := pool.Exec(ctx, query, args...)
	return err
}

// powerLaw draws from a heavy-tailed distribution in [1, ceiling].
func powerLaw(rng *rand.Rand, ceiling float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.001
	}
	return math.Max(1, math.Round(math.Pow(u, 4)*ceiling))
}

func weightedChoice(rng *rand.Rand, choices []string, weights []float64) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}
