package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"regexp"

	"github.com/redis/go-redis/v9"
)

// indexPatterns match every membership set the world store maintains and
// captures the kind of entity its members point at
var indexPatterns = []struct {
	match *regexp.Regexp
	kind  string
}{
	{regexp.MustCompile(`^world:\d+:locations$`), "location"},
	{regexp.MustCompile(`^world:\d+:connections$`), "connection"},
	{regexp.MustCompile(`^world:\d+:characters$`), "character"},
	{regexp.MustCompile(`^world:\d+:containers$`), "container"},
	{regexp.MustCompile(`^world:\d+:items$`), "item"},
	{regexp.MustCompile(`^world:\d+:quests$`), "quest"},
	{regexp.MustCompile(`^location:\d+:children$`), "location"},
	{regexp.MustCompile(`^location:\d+:(characters|connections|containers|items)$`), ""},
	{regexp.MustCompile(`^character:\d+:(items|containers)$`), ""},
	{regexp.MustCompile(`^container:\d+:items$`), "item"},
	{regexp.MustCompile(`^quest:\d+:objectives$`), "objective"},
}

var pluralKind = regexp.MustCompile(`:(characters|connections|containers|items)$`)

type dangling struct {
	index  string
	member string
}

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis:", redisURL)
	fmt.Println("Scanning world indexes for members without a row...")

	var found []dangling
	var checkedCount int

	iter := client.Scan(ctx, 0, "*:*:*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		kind := kindFor(key)
		if kind == "" {
			continue
		}
		checkedCount++

		members, err := client.SMembers(ctx, key).Result()
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", key, err)
			continue
		}
		for _, m := range members {
			n, err := client.Exists(ctx, fmt.Sprintf("%s:%s", kind, m)).Result()
			if err != nil {
				fmt.Printf("Error checking %s:%s: %v\n", kind, m, err)
				continue
			}
			if n == 0 {
				fmt.Printf("✗ %s references missing %s %s\n", key, kind, m)
				found = append(found, dangling{index: key, member: m})
			}
		}
	}

	if err := iter.Err(); err != nil {
		log.Fatal("Error during scan:", err)
	}

	fmt.Printf("\nChecked %d indexes, found %d dangling members\n", checkedCount, len(found))

	if len(found) == 0 {
		fmt.Println("No dangling members found!")
		return
	}

	fmt.Print("\nDo you want to REMOVE these members from their indexes? (yes/no): ")
	var response string
	_, _ = fmt.Scanln(&response)

	if response != "yes" {
		fmt.Println("Aborted - no changes made")
		return
	}

	for _, d := range found {
		if err := client.SRem(ctx, d.index, d.member).Err(); err != nil {
			fmt.Printf("Failed to remove %s from %s: %v\n", d.member, d.index, err)
		} else {
			fmt.Printf("Removed %s from %s\n", d.member, d.index)
		}
	}
	fmt.Println("\nCleanup complete!")
}

// kindFor returns the row prefix an index points at, or "" for keys that
// are not membership sets
func kindFor(key string) string {
	for _, p := range indexPatterns {
		if !p.match.MatchString(key) {
			continue
		}
		if p.kind != "" {
			return p.kind
		}
		m := pluralKind.FindStringSubmatch(key)
		if m == nil {
			return ""
		}
		return m[1][:len(m[1])-1]
	}
	return ""
}
