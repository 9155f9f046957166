package domain

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/projectconfig"
	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/vikunja"
)

const testKanbanViewID = 40

// fakeVikunja is an in-memory Vikunja serving the routes the client uses.
// A project gets one list view and one kanban view when added.
type fakeVikunja struct {
	t *testing.T

	mu        sync.Mutex
	nextID    int64
	projects  []vikunja.Project
	tasks     map[int64]*vikunja.Task
	labels    []vikunja.Label
	views     map[int64][]vikunja.View
	buckets   map[int64][]vikunja.Bucket
	bucketOf  map[int64]int64
	positions map[int64]float64
	relations []relationCall
	failures  map[string]int
	calls     []string
}

type relationCall struct {
	TaskID      int64
	Kind        string
	OtherTaskID int64
}

func newFakeVikunja(t *testing.T) *fakeVikunja {
	t.Helper()
	return &fakeVikunja{
		t:         t,
		nextID:    100,
		tasks:     map[int64]*vikunja.Task{},
		views:     map[int64][]vikunja.View{},
		buckets:   map[int64][]vikunja.Bucket{},
		bucketOf:  map[int64]int64{},
		positions: map[int64]float64{},
		failures:  map[string]int{},
	}
}

// newTestServices starts the fake and returns services wired to it and to a
// temp config store.
func newTestServices(t *testing.T) (*Services, *fakeVikunja) {
	t.Helper()
	fake := newFakeVikunja(t)
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client, err := vikunja.New(server.URL, "test-token", vikunja.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return &Services{
		Vikunja: client,
		Configs: projectconfig.NewStore(t.TempDir()),
	}, fake
}

func (f *fakeVikunja) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeVikunja) addProject(title string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.id()
	f.projects = append(f.projects, vikunja.Project{ID: id, Title: title})
	f.views[id] = []vikunja.View{
		{ID: f.id(), Title: "List", ProjectID: id, ViewKind: "list"},
		{ID: testKanbanViewID, Title: "Kanban", ProjectID: id, ViewKind: vikunja.ViewKindKanban},
	}
	return id
}

func (f *fakeVikunja) addBucket(title string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.id()
	f.buckets[testKanbanViewID] = append(f.buckets[testKanbanViewID], vikunja.Bucket{ID: id, Title: title})
	return id
}

func (f *fakeVikunja) addLabel(title string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.id()
	f.labels = append(f.labels, vikunja.Label{ID: id, Title: title})
	return id
}

func (f *fakeVikunja) addTask(task vikunja.Task) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.ID == 0 {
		task.ID = f.id()
	}
	f.tasks[task.ID] = &task
	return task.ID
}

// placeTask puts an existing task into a bucket at a position.
func (f *fakeVikunja) placeTask(taskID, bucketID int64, position float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bucketOf[taskID] = bucketID
	f.positions[taskID] = position
}

// fail makes "METHOD /api/v1/path" answer with status.
func (f *fakeVikunja) fail(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = status
}

func (f *fakeVikunja) task(id int64) vikunja.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		f.t.Fatalf("task %d does not exist", id)
	}
	return *task
}

func (f *fakeVikunja) position(id int64) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.positions[id]
	return p, ok
}

func (f *fakeVikunja) bucketTitles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var titles []string
	for _, b := range f.buckets[testKanbanViewID] {
		titles = append(titles, b.Title)
	}
	return titles
}

func (f *fakeVikunja) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/projects", f.listProjects)
	mux.HandleFunc("GET /api/v1/projects/{project}", f.getProject)
	mux.HandleFunc("PUT /api/v1/projects", f.createProject)
	mux.HandleFunc("POST /api/v1/projects/{project}", f.updateProject)
	mux.HandleFunc("DELETE /api/v1/projects/{project}", f.deleteProject)
	mux.HandleFunc("GET /api/v1/projects/{project}/tasks", f.listTasks)
	mux.HandleFunc("PUT /api/v1/projects/{project}/tasks", f.createTask)
	mux.HandleFunc("GET /api/v1/tasks/{task}", f.getTask)
	mux.HandleFunc("POST /api/v1/tasks/{task}", f.updateTask)
	mux.HandleFunc("DELETE /api/v1/tasks/{task}", f.deleteTask)
	mux.HandleFunc("POST /api/v1/tasks/{task}/position", f.setPosition)
	mux.HandleFunc("PUT /api/v1/tasks/{task}/labels", f.addTaskLabel)
	mux.HandleFunc("PUT /api/v1/tasks/{task}/relations", f.addRelation)
	mux.HandleFunc("PUT /api/v1/tasks/{task}/assignees", f.assignUser)
	mux.HandleFunc("DELETE /api/v1/tasks/{task}/assignees/{user}", f.unassignUser)
	mux.HandleFunc("GET /api/v1/labels", f.listLabels)
	mux.HandleFunc("PUT /api/v1/labels", f.createLabel)
	mux.HandleFunc("DELETE /api/v1/labels/{label}", f.deleteLabel)
	mux.HandleFunc("GET /api/v1/projects/{project}/views", f.listViews)
	mux.HandleFunc("GET /api/v1/projects/{project}/views/{view}/tasks", f.viewTasks)
	mux.HandleFunc("GET /api/v1/projects/{project}/views/{view}/buckets", f.listBuckets)
	mux.HandleFunc("PUT /api/v1/projects/{project}/views/{view}/buckets", f.createBucket)
	mux.HandleFunc("DELETE /api/v1/projects/{project}/views/{view}/buckets/{bucket}", f.deleteBucket)
	mux.HandleFunc("POST /api/v1/projects/{project}/views/{view}/buckets/{bucket}/tasks", f.moveToBucket)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		f.mu.Lock()
		f.calls = append(f.calls, key)
		status, failing := f.failures[key]
		f.mu.Unlock()
		if failing {
			w.WriteHeader(status)
			_, _ = fmt.Fprintf(w, `{"message":"forced failure"}`)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
	_, _ = fmt.Fprint(w, `{"message":"not found"}`)
}

func (f *fakeVikunja) decode(r *http.Request, v any) {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		f.t.Errorf("decode %s %s: %v", r.Method, r.URL.Path, err)
	}
}

func (f *fakeVikunja) listProjects(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, f.projects)
}

func (f *fakeVikunja) getProject(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		if p.ID == pathID(r, "project") {
			writeJSON(w, p)
			return
		}
	}
	notFound(w)
}

func (f *fakeVikunja) createProject(w http.ResponseWriter, r *http.Request) {
	var input vikunja.Project
	f.decode(r, &input)
	f.mu.Lock()
	defer f.mu.Unlock()
	input.ID = f.id()
	f.projects = append(f.projects, input)
	writeJSON(w, input)
}

func (f *fakeVikunja) updateProject(w http.ResponseWriter, r *http.Request) {
	var input vikunja.Project
	f.decode(r, &input)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.projects {
		if p.ID == pathID(r, "project") {
			input.ID = p.ID
			f.projects[i] = input
			writeJSON(w, input)
			return
		}
	}
	notFound(w)
}

func (f *fakeVikunja) deleteProject(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = slices.DeleteFunc(f.projects, func(p vikunja.Project) bool { return p.ID == pathID(r, "project") })
	writeJSON(w, map[string]string{"message": "Successfully deleted."})
}

func (f *fakeVikunja) sortedTasks(match func(*vikunja.Task) bool) []vikunja.Task {
	ids := make([]int64, 0, len(f.tasks))
	for id, task := range f.tasks {
		if match(task) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	out := make([]vikunja.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.tasks[id])
	}
	return out
}

func (f *fakeVikunja) listTasks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	projectID := pathID(r, "project")
	writeJSON(w, f.sortedTasks(func(t *vikunja.Task) bool { return t.ProjectID == projectID }))
}

func (f *fakeVikunja) createTask(w http.ResponseWriter, r *http.Request) {
	var input vikunja.Task
	f.decode(r, &input)
	f.mu.Lock()
	defer f.mu.Unlock()
	input.ID = f.id()
	input.ProjectID = pathID(r, "project")
	f.tasks[input.ID] = &input
	writeJSON(w, input)
}

func (f *fakeVikunja) getTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[pathID(r, "task")]
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, task)
}

func (f *fakeVikunja) updateTask(w http.ResponseWriter, r *http.Request) {
	var input vikunja.Task
	f.decode(r, &input)
	f.mu.Lock()
	defer f.mu.Unlock()
	id := pathID(r, "task")
	if _, ok := f.tasks[id]; !ok {
		notFound(w)
		return
	}
	input.ID = id
	f.tasks[id] = &input
	writeJSON(w, input)
}

func (f *fakeVikunja) deleteTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tasks, pathID(r, "task"))
	writeJSON(w, map[string]string{"message": "Successfully deleted."})
}

func (f *fakeVikunja) setPosition(w http.ResponseWriter, r *http.Request) {
	var input vikunja.TaskPosition
	f.decode(r, &input)
	f.mu.Lock()
	defer f.mu.Unlock()
	input.TaskID = pathID(r, "task")
	f.positions[input.TaskID] = input.Position
	writeJSON(w, input)
}

func (f *fakeVikunja) addTaskLabel(w http.ResponseWriter, r *http.Request) {
	var input struct {
		LabelID int64 `json:"label_id"`
	}
	f.decode(r, &input)
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[pathID(r, "task")]
	if !ok {
		notFound(w)
		return
	}
	for _, l := range f.labels {
		if l.ID == input.LabelID {
			task.Labels = append(task.Labels, l)
			writeJSON(w, input)
			return
		}
	}
	notFound(w)
}

func (f *fakeVikunja) addRelation(w http.ResponseWriter, r *http.Request) {
	var input vikunja.TaskRelation
	f.decode(r, &input)
	f.mu.Lock()
	defer f.mu.Unlock()
	taskID := pathID(r, "task")
	task, ok := f.tasks[taskID]
	other, otherOK := f.tasks[input.OtherTaskID]
	if !ok || !otherOK {
		notFound(w)
		return
	}
	if task.RelatedTasks == nil {
		task.RelatedTasks = map[string][]vikunja.Task{}
	}
	task.RelatedTasks[input.RelationKind] = append(task.RelatedTasks[input.RelationKind], vikunja.Task{ID: other.ID, Title: other.Title})
	f.relations = append(f.relations, relationCall{TaskID: taskID, Kind: input.RelationKind, OtherTaskID: input.OtherTaskID})
	writeJSON(w, input)
}

func (f *fakeVikunja) listLabels(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, f.labels)
}

func (f *fakeVikunja) createLabel(w http.ResponseWriter, r *http.Request) {
	var input vikunja.Label
	f.decode(r, &input)
	f.mu.Lock()
	defer f.mu.Unlock()
	input.ID = f.id()
	f.labels = append(f.labels, input)
	writeJSON(w, input)
}

func (f *fakeVikunja) deleteLabel(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := pathID(r, "label")
	idx := slices.IndexFunc(f.labels, func(l vikunja.Label) bool { return l.ID == id })
	if idx < 0 {
		notFound(w)
		return
	}
	f.labels = slices.Delete(f.labels, idx, idx+1)
	writeJSON(w, map[string]string{"message": "Successfully deleted."})
}

func (f *fakeVikunja) assignUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID int64 `json:"user_id"`
	}
	f.decode(r, &input)
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[pathID(r, "task")]
	if !ok {
		notFound(w)
		return
	}
	task.Assignees = append(task.Assignees, vikunja.User{ID: input.UserID, Username: "user" + itoa(input.UserID)})
	writeJSON(w, input)
}

func (f *fakeVikunja) unassignUser(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[pathID(r, "task")]
	if !ok {
		notFound(w)
		return
	}
	userID := pathID(r, "user")
	task.Assignees = slices.DeleteFunc(task.Assignees, func(u vikunja.User) bool { return u.ID == userID })
	writeJSON(w, map[string]string{"message": "Successfully deleted."})
}

func (f *fakeVikunja) deleteBucket(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	viewID := pathID(r, "view")
	id := pathID(r, "bucket")
	buckets := f.buckets[viewID]
	idx := slices.IndexFunc(buckets, func(b vikunja.Bucket) bool { return b.ID == id })
	if idx < 0 {
		notFound(w)
		return
	}
	f.buckets[viewID] = slices.Delete(buckets, idx, idx+1)
	writeJSON(w, map[string]string{"message": "Successfully deleted."})
}

func (f *fakeVikunja) listViews(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, f.views[pathID(r, "project")])
}

// viewTasks renders kanban views as buckets with positioned tasks and any
// other view as a flat task list.
func (f *fakeVikunja) viewTasks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	projectID := pathID(r, "project")
	viewID := pathID(r, "view")
	if viewID != testKanbanViewID {
		writeJSON(w, f.sortedTasks(func(t *vikunja.Task) bool { return t.ProjectID == projectID }))
		return
	}
	out := make([]vikunja.Bucket, 0, len(f.buckets[viewID]))
	for _, b := range f.buckets[viewID] {
		b.Tasks = f.sortedTasks(func(t *vikunja.Task) bool { return f.bucketOf[t.ID] == b.ID })
		for i := range b.Tasks {
			p := f.positions[b.Tasks[i].ID]
			b.Tasks[i].Position = &p
			b.Tasks[i].BucketID = b.ID
		}
		if b.Tasks == nil {
			b.Tasks = []vikunja.Task{}
		}
		out = append(out, b)
	}
	writeJSON(w, out)
}

func (f *fakeVikunja) listBuckets(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	buckets := f.buckets[pathID(r, "view")]
	if buckets == nil {
		buckets = []vikunja.Bucket{}
	}
	writeJSON(w, buckets)
}

func (f *fakeVikunja) createBucket(w http.ResponseWriter, r *http.Request) {
	var input vikunja.NewBucket
	f.decode(r, &input)
	f.mu.Lock()
	defer f.mu.Unlock()
	viewID := pathID(r, "view")
	bucket := vikunja.Bucket{ID: f.id(), Title: input.Title, Position: float64(input.Position), Limit: input.Limit, ProjectID: pathID(r, "project")}
	f.buckets[viewID] = append(f.buckets[viewID], bucket)
	writeJSON(w, bucket)
}

func (f *fakeVikunja) moveToBucket(w http.ResponseWriter, r *http.Request) {
	var input vikunja.TaskBucket
	f.decode(r, &input)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[input.TaskID]; !ok {
		notFound(w)
		return
	}
	f.bucketOf[input.TaskID] = pathID(r, "bucket")
	writeJSON(w, input)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
