package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/lukashondrich/open-workinghours-sub006/config"
	"github.com/lukashondrich/open-workinghours-sub006/model"
	"github.com/lukashondrich/open-workinghours-sub006/privacy"
	"github.com/lukashondrich/open-workinghours-sub006/queue"
	v1 "github.com/lukashondrich/open-workinghours-sub006/remote/v1"
	"github.com/lukashondrich/open-workinghours-sub006/security"
	"github.com/lukashondrich/open-workinghours-sub006/store"
	"github.com/lukashondrich/open-workinghours-sub006/utils"
)

func main() {
	dateStr := flag.String("date", "", "Date inside the week to roll up (yyyy-MM-dd). Defaults to yesterday.")
	week := flag.Bool("week", false, "Enqueue a weekly rollup for the ISO week of -date before draining.")
	retries := flag.Int("retries", queue.DefaultMaxRetries, "Max delivery attempts per record.")
	flag.Parse()

	targetDate := time.Now().UTC().AddDate(0, 0, -1)
	if *dateStr != "" {
		var err error
		targetDate, err = time.ParseInLocation(utils.DateLayout, *dateStr, time.UTC)
		if err != nil {
			log.Fatalf("invalid date format: %v", err)
		}
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal(err)
	}

	db, err := store.Open(store.Options{Path: cfg.Database.Path, LogLevel: store.LogLevelWarn})
	if err != nil {
		log.Fatal(err)
	}

	tokens := &security.TokenSource{
		Identity:     security.DeviceIdentity{DeviceID: "device", UserName: "device"},
		Base64Secret: cfg.Remote.SigningSecret,
		TTLSeconds:   3600,
	}
	client := v1.NewClient(cfg.Remote.URL, tokens)
	q := queue.New(db, client, cfg.Remote.ClientVersion)

	if err := q.ResetStale(); err != nil {
		log.Fatal("reset stale submissions:", err)
	}

	if *week {
		if err := enqueueWeekRollup(db, q, cfg, targetDate); err != nil {
			log.Fatal(err)
		}
	}

	if err := q.ProcessAll(*retries); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Done.")
}

// enqueueWeekRollup sums the confirmed daily actuals of the ISO week
// containing the date, noises the totals once and enqueues a single
// week-range record.
func enqueueWeekRollup(db *gorm.DB, q *queue.Queue, cfg *config.Config, date time.Time) error {
	weekStart, weekEnd := utils.ISOWeekBounds(date)

	var days []model.DailyActual
	err := db.
		Where("date >= ? AND date <= ?", weekStart, weekEnd).
		Where("confirmed_at IS NOT NULL").
		Find(&days).Error
	if err != nil {
		return fmt.Errorf("fetch confirmed days: %w", err)
	}
	if len(days) == 0 {
		fmt.Printf("No confirmed days in week %s\n", weekStart.Format(utils.DateLayout))
		return nil
	}

	planned, actual := 0, 0
	for _, d := range days {
		planned += d.PlannedMinutes
		actual += d.ActualMinutes
	}

	noiser := privacy.NewNoiser()
	noisedPlanned, err := noiser.NoisedMinutes(planned, cfg.Privacy.Epsilon, cfg.Privacy.SensitivityMinutes)
	if err != nil {
		return err
	}
	noisedActual, err := noiser.NoisedMinutes(actual, cfg.Privacy.Epsilon, cfg.Privacy.SensitivityMinutes)
	if err != nil {
		return err
	}

	rec, err := q.Enqueue(weekStart, weekEnd, noisedPlanned, noisedActual)
	if err != nil {
		return err
	}
	fmt.Printf("Enqueued weekly rollup %s (%s to %s)\n", rec.ID, weekStart.Format(utils.DateLayout), weekEnd.Format(utils.DateLayout))
	return nil
}
