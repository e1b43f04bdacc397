package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/lms-backend/internal/app"
	"github.com/yungbote/lms-backend/internal/modules/catalog"
)

func main() {
	skipExisting := flag.Bool("skip-existing", false, "skip courses whose slug is already imported instead of failing")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: seed [-skip-existing] <course.yaml>...")
		os.Exit(2)
	}

	log, err := app.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	_, theDB, _, services, err := app.Bootstrap(log)
	if err != nil {
		log.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	if sqlDB, err := theDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx := context.Background()
	failed := false
	for _, path := range flag.Args() {
		defs, err := catalog.LoadFile(path)
		if err != nil {
			log.Error("Failed to load course file", "path", path, "error", err)
			failed = true
			continue
		}
		for _, def := range defs {
			res, err := services.Catalog.Import(ctx, def)
			if err != nil {
				if *skipExisting && catalog.IsDuplicateSlug(err) {
					log.Info("Course already imported", "slug", def.Slug)
					continue
				}
				log.Error("Import failed", "path", path, "slug", def.Slug, "error", err)
				failed = true
				continue
			}
			log.Info("Course imported",
				"slug", res.Slug,
				"course_id", res.CourseID,
				"modules", res.Modules,
				"lessons", res.Lessons,
				"quizzes", res.Quizzes,
				"questions", res.Questions,
			)
		}
	}
	if failed {
		os.Exit(1)
	}
}
