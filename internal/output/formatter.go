package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"devtask/internal/comments"
	"devtask/internal/models"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Task(t *models.Task)
	TaskList(tasks []models.Task, title string)
	TaskBrief(t *models.Task)
	Assignments(rows []models.TaskAssignment)
	Project(p *models.Project, members []models.ProjectMember)
	ProjectList(projects []models.Project)
	Comments(nodes []*comments.Node)
	Notifications(rows []models.Notification)
	History(rows []models.TaskHistory)
	Success(msg string)
	Error(err error)
	Info(msg string)
	KeyValue(key, value string)
	Section(title string)
	JSON(v interface{})
}

// TextFormatter outputs human-readable text
type TextFormatter struct{}

// JSONFormatter outputs JSON
type JSONFormatter struct{}

// New returns the appropriate formatter based on json flag
func New(jsonOutput bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &TextFormatter{}
}

// TextFormatter implementations

func (f *TextFormatter) Task(t *models.Task) {
	fmt.Printf("ID:        %s\n", t.ID)
	fmt.Printf("Title:     %s\n", t.Title)
	fmt.Printf("Status:    %s\n", t.Status)
	fmt.Printf("Priority:  %s\n", t.Priority)
	fmt.Printf("Owner:     %s\n", t.UserID)
	if t.InProject() {
		fmt.Printf("Project:   %s\n", *t.ProjectID)
	}
	if t.Description != "" {
		fmt.Printf("Desc:      %s\n", t.Description)
	}
	if t.DueDate != nil {
		fmt.Printf("Due:       %s\n", t.DueDate.Format(models.DateTimeShortFormat))
	}
	fmt.Printf("Estimated: %s\n", models.HoursString(t.EstimatedTime))
	fmt.Printf("Actual:    %s\n", models.HoursString(t.ActualTime))
	if len(t.Tags) > 0 {
		fmt.Printf("Tags:      %s\n", strings.Join(t.TagNames(), ", "))
	}
	if len(t.DependencyIDs) > 0 {
		fmt.Printf("Depends:   %s\n", strings.Join(t.DependencyIDs, ", "))
	}
	fmt.Printf("Created:   %s\n", t.CreatedAt.Format(models.DateTimeShortFormat))
	fmt.Printf("Updated:   %s\n", t.UpdatedAt.Format(models.DateTimeShortFormat))
}

func (f *TextFormatter) TaskList(tasks []models.Task, title string) {
	if title != "" {
		fmt.Printf("%s (%d):\n", title, len(tasks))
	}
	for _, t := range tasks {
		f.TaskBrief(&t)
	}
}

func (f *TextFormatter) TaskBrief(t *models.Task) {
	tags := ""
	if len(t.Tags) > 0 {
		tags = " [" + strings.Join(t.TagNames(), ",") + "]"
	}
	fmt.Printf("[%s] %-6s %-11s %s%s\n", t.ID, t.Priority, t.Status, t.Title, tags)
}

func (f *TextFormatter) Assignments(rows []models.TaskAssignment) {
	if len(rows) == 0 {
		fmt.Println("No assignments")
		return
	}
	for _, a := range rows {
		fmt.Printf("[%s] %-8s %s\n", a.ID, a.Role(), a.UserID)
	}
}

func (f *TextFormatter) Project(p *models.Project, members []models.ProjectMember) {
	fmt.Printf("ID:      %s\n", p.ID)
	fmt.Printf("Title:   %s\n", p.Title)
	fmt.Printf("Owner:   %s\n", p.OwnerID)
	if p.Description != "" {
		fmt.Printf("Desc:    %s\n", p.Description)
	}
	fmt.Printf("Created: %s\n", p.CreatedAt.Format(models.DateTimeShortFormat))
	if len(members) > 0 {
		fmt.Printf("\nMembers (%d):\n", len(members))
		for _, m := range members {
			fmt.Printf("  - %s (%s)\n", m.UserID, m.Role)
		}
	}
}

func (f *TextFormatter) ProjectList(projects []models.Project) {
	for _, p := range projects {
		fmt.Printf("[%s] %s (owner %s)\n", p.ID, p.Title, p.OwnerID)
	}
}

func (f *TextFormatter) Comments(nodes []*comments.Node) {
	printComments(nodes, 0)
}

func printComments(nodes []*comments.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, c := range nodes {
		fmt.Printf("%s%s %s (%s): %s\n", indent, c.CreatedAt.Format(models.DateTimeShortFormat), c.UserID, c.ID, c.Content)
		printComments(c.Replies, depth+1)
	}
}

func (f *TextFormatter) Notifications(rows []models.Notification) {
	if len(rows) == 0 {
		fmt.Println("No notifications")
		return
	}
	for _, n := range rows {
		mark := " "
		if !n.IsRead {
			mark = "*"
		}
		fmt.Printf("%s [%s] %s %s\n", mark, n.ID, n.Type, n.Message)
	}
}

func (f *TextFormatter) History(rows []models.TaskHistory) {
	for _, h := range rows {
		by := ""
		if h.ChangedBy != "" {
			by = " by " + h.ChangedBy
		}
		fmt.Printf("%s %s: %q -> %q%s\n", h.ChangedAt.Format(models.DateTimeFormat), h.Field, h.OldValue, h.NewValue, by)
	}
}

func (f *TextFormatter) Success(msg string) {
	fmt.Println(msg)
}

func (f *TextFormatter) Error(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func (f *TextFormatter) Info(msg string) {
	fmt.Println(msg)
}

func (f *TextFormatter) KeyValue(key, value string) {
	fmt.Printf("%s: %s\n", key, value)
}

func (f *TextFormatter) Section(title string) {
	fmt.Printf("\n%s:\n", title)
}

func (f *TextFormatter) JSON(v interface{}) {
	// TextFormatter doesn't output JSON, but provide fallback
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		f.Error(err)
		return
	}
	fmt.Println(string(data))
}

// JSONFormatter implementations

func (f *JSONFormatter) Task(t *models.Task) {
	f.JSON(t)
}

func (f *JSONFormatter) TaskList(tasks []models.Task, title string) {
	f.JSON(map[string]interface{}{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (f *JSONFormatter) TaskBrief(t *models.Task) {
	f.JSON(t)
}

func (f *JSONFormatter) Assignments(rows []models.TaskAssignment) {
	f.JSON(map[string]interface{}{
		"count":       len(rows),
		"assignments": rows,
	})
}

func (f *JSONFormatter) Project(p *models.Project, members []models.ProjectMember) {
	f.JSON(map[string]interface{}{
		"project": p,
		"members": members,
	})
}

func (f *JSONFormatter) ProjectList(projects []models.Project) {
	f.JSON(map[string]interface{}{
		"count":    len(projects),
		"projects": projects,
	})
}

func (f *JSONFormatter) Comments(nodes []*comments.Node) {
	f.JSON(map[string]interface{}{
		"count":    len(nodes),
		"comments": nodes,
	})
}

func (f *JSONFormatter) Notifications(rows []models.Notification) {
	f.JSON(map[string]interface{}{
		"count":         len(rows),
		"notifications": rows,
	})
}

func (f *JSONFormatter) History(rows []models.TaskHistory) {
	f.JSON(map[string]interface{}{
		"count":   len(rows),
		"history": rows,
	})
}

func (f *JSONFormatter) Success(msg string) {
	f.JSON(map[string]interface{}{"success": true, "message": msg})
}

func (f *JSONFormatter) Error(err error) {
	f.JSON(map[string]interface{}{"error": true, "message": err.Error()})
}

func (f *JSONFormatter) Info(msg string) {
	f.JSON(map[string]interface{}{"message": msg})
}

func (f *JSONFormatter) KeyValue(key, value string) {
	f.JSON(map[string]string{key: value})
}

func (f *JSONFormatter) Section(title string) {
	// JSON doesn't need section headers
}

func (f *JSONFormatter) JSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, `{"error": true, "message": "JSON marshal error: %s"}`+"\n", err.Error())
		return
	}
	fmt.Println(string(data))
}
