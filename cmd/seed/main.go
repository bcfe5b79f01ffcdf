package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BradenHooton/dancingpony/internal/config"
	"github.com/BradenHooton/dancingpony/internal/database"
	"github.com/BradenHooton/dancingpony/internal/models"
	"github.com/BradenHooton/dancingpony/internal/repositories"
)

// seedDish is one entry of the dishes JSON file
type seedDish struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Image       string   `json:"image"`
	Rating      *float64 `json:"rating"`
}

func main() {
	dishesPath := flag.String("dishes", "examples/dishes.json", "path to the dishes JSON file")
	imageDir := flag.String("images", "examples/img", "directory holding <dish_name>.png images")
	migrate := flag.Bool("migrate", false, "run database migrations before seeding")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	dishes, err := loadDishes(*dishesPath, *imageDir, logger)
	if err != nil {
		logger.Error("failed to load dishes", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *migrate {
		if err := db.Migrate(ctx); err != nil {
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	repo := repositories.NewDishRepository(db)
	for _, d := range dishes {
		if _, err := repo.Add(ctx, d); err != nil {
			logger.Error("failed to insert dish", slog.String("name", d.Name), slog.Any("error", err))
			os.Exit(1)
		}
	}

	logger.Info("dishes inserted", slog.Int("count", len(dishes)))
}

// loadDishes reads the dish list and attaches base64 images found in imageDir.
// A missing image is logged and leaves any image from the JSON untouched.
func loadDishes(path, imageDir string, logger *slog.Logger) ([]*models.Dish, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var entries []seedDish
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(entries) == 0 {
		logger.Warn("dishes file is empty", slog.String("path", path))
	}

	dishes := make([]*models.Dish, 0, len(entries))
	for _, e := range entries {
		image := e.Image
		imagePath := imagePathFor(imageDir, e.Name)
		if data, err := os.ReadFile(imagePath); err == nil {
			image = base64.StdEncoding.EncodeToString(data)
		} else {
			logger.Warn("dish image not found", slog.String("name", e.Name), slog.String("path", imagePath), slog.Any("error", err))
		}

		dishes = append(dishes, &models.Dish{
			Name:        e.Name,
			Description: e.Description,
			Price:       e.Price,
			Image:       image,
			Rating:      e.Rating,
		})
	}
	return dishes, nil
}

func imagePathFor(dir, name string) string {
	return filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".png")
}
