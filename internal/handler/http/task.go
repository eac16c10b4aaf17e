package http

import (
	"net/http"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/task"
	"github.com/pagemantra/worktrack-backend-go/internal/handler/http/response"
)

type TaskHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	MyTasks(w http.ResponseWriter, r *http.Request)
	AssignedByMe(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	AddWorkLog(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type taskHandlerImpl struct {
	taskService task.TaskService
}

func NewTaskHandler(taskService task.TaskService) TaskHandler {
	return &taskHandlerImpl{taskService: taskService}
}

func taskFilter(q *queryReader) task.TaskFilter {
	filter := task.TaskFilter{
		AssignedTo: q.text("assigned_to"),
		AssignedBy: q.text("assigned_by"),
		Params:     q.params(),
	}
	if s := q.text("status"); s != nil {
		status := task.Status(*s)
		filter.Status = &status
	}
	if p := q.text("priority"); p != nil {
		priority := task.Priority(*p)
		filter.Priority = &priority
	}
	return filter
}

func (h *taskHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req task.CreateTaskRequest
	if !decodeJSON(w, r, &req, "CreateTask") {
		return
	}

	created, err := h.taskService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Task created successfully", created)
}

func (h *taskHandlerImpl) list(w http.ResponseWriter, r *http.Request, fetch func(*http.Request, task.TaskFilter) (any, error)) {
	q := newQueryReader(r)
	filter := taskFilter(q)
	if !q.done(w) {
		return
	}

	page, err := fetch(r, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, page)
}

func (h *taskHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(r *http.Request, f task.TaskFilter) (any, error) {
		return h.taskService.List(r.Context(), f)
	})
}

func (h *taskHandlerImpl) MyTasks(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(r *http.Request, f task.TaskFilter) (any, error) {
		return h.taskService.MyTasks(r.Context(), f)
	})
}

func (h *taskHandlerImpl) AssignedByMe(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(r *http.Request, f task.TaskFilter) (any, error) {
		return h.taskService.AssignedByMe(r.Context(), f)
	})
}

func (h *taskHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	t, err := h.taskService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, t)
}

func (h *taskHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req task.UpdateTaskRequest
	if !decodeJSON(w, r, &req, "UpdateTask") {
		return
	}

	updated, err := h.taskService.Update(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task updated successfully", updated)
}

func (h *taskHandlerImpl) AddWorkLog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req task.WorkLogRequest
	if !decodeJSON(w, r, &req, "AddWorkLog") {
		return
	}

	updated, err := h.taskService.AddWorkLog(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Work log added successfully", updated)
}

func (h *taskHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r)
	filter := task.SummaryFilter{StartDate: q.text("start_date"), EndDate: q.text("end_date")}
	if !q.done(w) {
		return
	}

	summary, err := h.taskService.Summary(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, summary)
}

func (h *taskHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task deleted successfully", nil)
}
