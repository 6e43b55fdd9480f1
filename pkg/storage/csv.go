package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"xscraper/pkg/models"
)

var csvHeader = []string{
	"ID", "Author", "Username", "Display Name", "Body", "Date",
	"Views", "Replies", "Reposts", "Likes", "Profile Followers",
	"URL", "Images",
}

// WriteCSV exports records as a flat spreadsheet-friendly table. Written
// atomically like the JSON output.
func WriteCSV(path string, records []models.PostRecord) error {
	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary CSV file: %w", err)
	}

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(csvRow(r)); err != nil {
			file.Close()
			os.Remove(tempPath)
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close CSV file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace CSV file: %w", err)
	}
	return nil
}

func csvRow(r models.PostRecord) []string {
	date := ""
	if !r.PublishedAt.IsZero() {
		date = r.PublishedAt.UTC().Format(time.RFC3339)
	}
	followers := ""
	if r.Followers >= 0 {
		followers = strconv.FormatInt(r.Followers, 10)
	}
	return []string{
		r.ID,
		r.Author,
		r.Username,
		r.DisplayName,
		r.Body,
		date,
		strconv.FormatInt(r.Counts.Views, 10),
		strconv.FormatInt(r.Counts.Replies, 10),
		strconv.FormatInt(r.Counts.Reposts, 10),
		strconv.FormatInt(r.Counts.Likes, 10),
		followers,
		r.URL,
		strings.Join(r.Images, ", "),
	}
}
