package optimizer

import "fmt"

// Task is a unit of work in a Queue
type Task struct {
	Path string
	Run  func() Result
}

// Queue runs tasks strictly one after another in push order. A task
// completes, including all its writes, before the next one starts.
type Queue struct {
	tasks []Task
}

// Push appends a task
func (q *Queue) Push(path string, run func() Result) {
	q.tasks = append(q.tasks, Task{Path: path, Run: run})
}

// Len returns the number of pending tasks
func (q *Queue) Len() int {
	return len(q.tasks)
}

// Drain runs every pending task and hands each Result to each. A panicking
// task becomes a failed Result; it never stops the queue.
func (q *Queue) Drain(each func(Result)) {
	tasks := q.tasks
	q.tasks = nil

	for _, task := range tasks {
		each(runTask(task))
	}
}

func runTask(task Task) (r Result) {
	defer func() {
		if p := recover(); p != nil {
			r = Result{Path: task.Path, Err: fmt.Errorf("panic while processing %s: %v", task.Path, p)}
		}
	}()
	return task.Run()
}
