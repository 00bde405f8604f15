// Package server is the reference REST backend the client runs against in
// development. It mirrors the json-server surface the original UI consumed:
// integer ids, PATCH merges fields, tasks filterable by userId, and task
// timestamps stored exactly as the client sent them.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"taskdeck/internal/model"
)

// taskPatch mirrors the PATCH body: absent fields stay untouched.
type taskPatch struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
	Priority    *model.Priority `json:"priority"`
	Status      *model.Status   `json:"status"`
	DueDate     *string         `json:"dueDate"`
	UpdatedAt   *string         `json:"updatedAt"`
}

// NewRouter wires the six routes of the backend surface.
func NewRouter(db *gorm.DB) *gin.Engine {
	tasks := NewTaskRepository(db)
	categories := NewCategoryRepository(db)
	users := NewUserRepository(db)

	r := gin.Default()

	r.GET("/users", handleListUsers(users))
	r.GET("/categories", handleListCategories(categories))

	r.GET("/tasks", handleListTasks(tasks))
	r.POST("/tasks", handleCreateTask(tasks))
	r.PATCH("/tasks/:id", handleUpdateTask(tasks))
	r.DELETE("/tasks/:id", handleDeleteTask(tasks))

	return r
}

func handleListUsers(repo *UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := repo.ListAll(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func handleListCategories(repo *CategoryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := repo.ListAll(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func handleListTasks(repo *TaskRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.Atoi(c.Query("userId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId query parameter is required"})
			return
		}
		tasks, err := repo.ListByUser(c, userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, tasks)
	}
}

func handleCreateTask(repo *TaskRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var task model.Task
		if err := c.ShouldBindBodyWithJSON(&task); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		task.ID = 0 // server assigns
		if err := repo.Create(c, &task); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, task)
	}
}

func handleUpdateTask(repo *TaskRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id in URL path"})
			return
		}

		var patch taskPatch
		if err := c.ShouldBindBodyWithJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		task, err := repo.FindByID(c, taskID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		applyPatch(task, patch)
		if err := repo.Save(c, task); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

func handleDeleteTask(repo *TaskRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id in URL path"})
			return
		}

		if _, err := repo.FindByID(c, taskID); errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		} else if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if err := repo.Delete(c, taskID); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func applyPatch(task *model.Task, patch taskPatch) {
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Category != nil {
		task.Category = *patch.Category
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.DueDate != nil {
		task.DueDate = *patch.DueDate
	}
	if patch.UpdatedAt != nil {
		if stamped, err := time.Parse(time.RFC3339Nano, *patch.UpdatedAt); err == nil {
			task.UpdatedAt = stamped
		}
	}
}
