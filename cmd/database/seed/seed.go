package seed

import (
	"Foodgram-Backend/entities"
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoadIngredients imports ingredients from a CSV file with rows of the
// form: name,measurement_unit. Rows that collide with an existing
// name/unit pair are skipped.
func LoadIngredients(db *gorm.DB, csvPath string) error {
	rows, err := readCSV(csvPath)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if len(row) < 2 {
			return fmt.Errorf("malformed ingredient row: %v", row)
		}
		ingredient := entities.Ingredient{
			ID:              uuid.New(),
			Name:            row[0],
			MeasurementUnit: row[1],
		}
		if err := db.Create(&ingredient).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return err
		}
	}

	fmt.Printf("Ingredients loaded from %s\n", csvPath)
	return nil
}

// LoadTags imports tags from a CSV file with rows of the form:
// name,color,slug.
func LoadTags(db *gorm.DB, csvPath string) error {
	rows, err := readCSV(csvPath)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if len(row) < 3 {
			return fmt.Errorf("malformed tag row: %v", row)
		}
		tag := entities.Tag{
			ID:    uuid.New(),
			Name:  row[0],
			Color: row[1],
			Slug:  row[2],
		}
		if err := db.Create(&tag).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return err
		}
	}

	fmt.Printf("Tags loaded from %s\n", csvPath)
	return nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	defer file.Close()

	return csv.NewReader(file).ReadAll()
}
