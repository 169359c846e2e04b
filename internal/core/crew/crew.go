package crew

import (
	"context"
	"fmt"
	"strings"

	"github.com/kataras/golog"

	"github.com/agenthands/papergraph/internal/llm"
)

// Tool is a capability an agent can call while working on a task.
type Tool interface {
	Name() string
	Description() string
	Run(ctx context.Context, input string) (string, error)
}

// Agent is a persona: a role, a goal, and a backstory that frame every
// prompt it executes, plus the tools it may consult.
type Agent struct {
	Role      string
	Goal      string
	Backstory string
	Tools     []Tool
}

// Task is one unit of work assigned to an agent. Context tasks feed
// their outputs into this task's prompt.
type Task struct {
	Description    string
	ExpectedOutput string
	Agent          *Agent
	Context        []*Task

	output string
}

// Output returns the task's result after the crew has run.
func (t *Task) Output() string {
	return t.output
}

// Crew executes its tasks sequentially, each task seeing the outputs of
// its context tasks. The final task's output is the crew's result.
type Crew struct {
	llm   llm.Client
	tasks []*Task
}

func New(client llm.Client, tasks ...*Task) *Crew {
	return &Crew{llm: client, tasks: tasks}
}

// Kickoff runs every task in order and returns the last output.
func (c *Crew) Kickoff(ctx context.Context) (string, error) {
	if len(c.tasks) == 0 {
		return "", fmt.Errorf("crew has no tasks")
	}

	for i, task := range c.tasks {
		golog.Infof("crew: task %d/%d (%s)", i+1, len(c.tasks), task.Agent.Role)
		output, err := c.executeTask(ctx, task)
		if err != nil {
			return "", fmt.Errorf("task %d (%s) failed: %w", i+1, task.Agent.Role, err)
		}
		task.output = output
	}

	return c.tasks[len(c.tasks)-1].output, nil
}

const toolQuestionsPrompt = `You are %s. You have access to a tool: %s — %s.

Before working on the following task, list up to 3 short questions you
want to ask the tool. One question per line, nothing else.

Task: %s`

func (c *Crew) executeTask(ctx context.Context, task *Task) (string, error) {
	agent := task.Agent

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.\n%s\nYour goal: %s\n\n", agent.Role, agent.Backstory, agent.Goal)

	for _, prior := range task.Context {
		if prior.output == "" {
			continue
		}
		fmt.Fprintf(&b, "Context from %s:\n%s\n\n", prior.Agent.Role, prior.output)
	}

	for _, tool := range agent.Tools {
		observations := c.consult(ctx, agent, tool, task.Description)
		if observations != "" {
			fmt.Fprintf(&b, "Findings from %s:\n%s\n", tool.Name(), observations)
		}
	}

	fmt.Fprintf(&b, "Task:\n%s\n\nExpected output: %s\n", task.Description, task.ExpectedOutput)

	return c.llm.Generate(ctx, b.String())
}

// consult asks the model which questions to put to the tool, runs
// them, and returns the collected observations. Tool failures degrade
// to a note rather than failing the task.
func (c *Crew) consult(ctx context.Context, agent *Agent, tool Tool, taskDescription string) string {
	prompt := fmt.Sprintf(toolQuestionsPrompt, agent.Role, tool.Name(), tool.Description(), taskDescription)
	response, err := c.llm.Generate(ctx, prompt)
	if err != nil {
		golog.Warnf("crew: question planning failed: %v", err)
		return ""
	}

	var b strings.Builder
	count := 0
	for _, line := range strings.Split(response, "\n") {
		question := strings.TrimLeft(strings.TrimSpace(line), "-*•1234567890. ")
		if question == "" {
			continue
		}
		if count == 3 {
			break
		}
		count++

		observation, err := tool.Run(ctx, question)
		if err != nil {
			golog.Warnf("crew: tool %s failed on %q: %v", tool.Name(), question, err)
			observation = fmt.Sprintf("(tool error: %v)", err)
		}
		fmt.Fprintf(&b, "Q: %s\nA: %s\n", question, observation)
	}
	return b.String()
}
