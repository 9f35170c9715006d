package services

import (
	"github.com/projectdesk/projectdesk/internal/models"
	"gorm.io/gorm"
)

type Counts struct {
	Projects int64 `json:"projects"`
	Tasks    int64 `json:"tasks"`
	Comments int64 `json:"comments"`
}

func CountEntities(conn *gorm.DB) (Counts, error) {
	var counts Counts

	if err := conn.Model(&models.Project{}).Count(&counts.Projects).Error; err != nil {
		return counts, err
	}
	if err := conn.Model(&models.Task{}).Count(&counts.Tasks).Error; err != nil {
		return counts, err
	}
	if err := conn.Model(&models.Comment{}).Count(&counts.Comments).Error; err != nil {
		return counts, err
	}

	return counts, nil
}
