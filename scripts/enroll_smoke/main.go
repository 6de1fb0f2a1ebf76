// Command enroll_smoke fires concurrent enrollment attempts for one section
// against a running API and checks that the seat counter never overflows.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/course-enrollment-api/internal/dto"
	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/internal/service"
)

type attempt struct {
	StudentID int64
	Status    int
	Outcome   string
	Duration  time.Duration
	Err       error
}

// snapshot is the section state read through the API around a run.
type snapshot struct {
	Section    *models.AvailableClass
	Waitlisted int
}

type summary struct {
	Outcomes map[string]int
	Errors   int
	Slowest  time.Duration
}

type options struct {
	base       string
	prefix     string
	secret     string
	course     string
	section    int
	department string
	students   int
	firstID    int64
	timeout    time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "enroll_smoke",
		Short: "Fire concurrent enrollments at one section and verify the seat counters",
		Long: `Mints student tokens with the shared JWT secret, posts one enrollment per
student at the same instant and compares the section counters read from
/classes before and after the run.

Exits non-zero when more students were enrolled than seats were open, when the
counter moved by a different amount than the number of enrolled responses, or
when the waitlist admitted more students than it had free spots.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.base, "base", "http://localhost:8080", "API base URL")
	flags.StringVar(&opts.prefix, "prefix", "/api/v1", "API route prefix")
	flags.StringVar(&opts.secret, "jwt-secret", "dev_secret", "JWT signing secret shared with the API")
	flags.StringVarP(&opts.course, "course", "c", "CPSC449", "Course code")
	flags.IntVarP(&opts.section, "section", "s", 1, "Section number")
	flags.StringVarP(&opts.department, "department", "d", "CPSC", "Department used to read seat counters")
	flags.IntVarP(&opts.students, "students", "n", 50, "Concurrent enrollment attempts")
	flags.Int64Var(&opts.firstID, "first-student", 900000000, "First student id; ids are consecutive")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "HTTP client timeout")

	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	if opts.students <= 0 {
		return errors.New("--students must be positive")
	}

	client := &http.Client{Timeout: opts.timeout}
	tokens := service.NewTokenService(service.TokenConfig{Secret: opts.secret, Issuer: "enroll_smoke", Expiry: time.Hour})
	apiBase := strings.TrimRight(opts.base, "/") + opts.prefix
	key := models.SectionKey{CourseCode: opts.course, SectionNumber: opts.section}

	before, err := fetchSnapshot(client, tokens, apiBase, opts.department, key)
	if err != nil {
		return fmt.Errorf("read section before run: %w", err)
	}

	attempts := make([]attempt, opts.students)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < opts.students; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			attempts[i] = enroll(client, tokens, apiBase, opts.firstID+int64(i), key)
		}(i)
	}
	close(start)
	wg.Wait()

	after, err := fetchSnapshot(client, tokens, apiBase, opts.department, key)
	if err != nil {
		return fmt.Errorf("read section after run: %w", err)
	}

	result := tally(attempts)
	printReport(cmd.OutOrStdout(), key, before, after, result)

	if problems := checkInvariants(before, after, result); len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(cmd.ErrOrStderr(), "VIOLATION:", p)
		}
		return fmt.Errorf("%d invariant violations", len(problems))
	}
	return nil
}

func enroll(client *http.Client, tokens *service.TokenService, apiBase string, studentID int64, key models.SectionKey) attempt {
	res := attempt{StudentID: studentID}
	token, _, err := tokens.IssueToken(fmt.Sprintf("%d", studentID), models.RoleStudent, "")
	if err != nil {
		res.Err = err
		return res
	}
	payload, _ := json.Marshal(dto.EnrollmentRequest{StudentID: studentID, CourseCode: key.CourseCode, SectionNumber: key.SectionNumber})
	req, err := http.NewRequest(http.MethodPost, apiBase+"/enrollments", bytes.NewReader(payload))
	if err != nil {
		res.Err = err
		return res
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	began := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(began)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()
	res.Status = resp.StatusCode

	var body struct {
		Data  dto.EnrollmentResponse `json:"data"`
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		res.Err = fmt.Errorf("decode response: %w", err)
		return res
	}
	if body.Error != nil {
		res.Outcome = strings.ToLower(body.Error.Code)
		return res
	}
	res.Outcome = body.Data.EnrollmentStatus
	return res
}

func fetchSnapshot(client *http.Client, tokens *service.TokenService, apiBase, department string, key models.SectionKey) (snapshot, error) {
	token, _, err := tokens.IssueToken("enroll_smoke", models.RoleRegistrar, "")
	if err != nil {
		return snapshot{}, err
	}
	section, err := fetchSection(client, token, apiBase, department, key)
	if err != nil {
		return snapshot{}, err
	}
	waitlisted, err := fetchWaitlistCount(client, token, apiBase, key)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{Section: section, Waitlisted: waitlisted}, nil
}

func fetchWaitlistCount(client *http.Client, token, apiBase string, key models.SectionKey) (int, error) {
	target := fmt.Sprintf("%s/sections/%s/%d/waitlist", apiBase, url.PathEscape(key.CourseCode), key.SectionNumber)
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("list waitlist returned %d", resp.StatusCode)
	}
	var body struct {
		Data []models.WaitlistEntry `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	return len(body.Data), nil
}

func fetchSection(client *http.Client, token, apiBase, department string, key models.SectionKey) (*models.AvailableClass, error) {
	req, err := http.NewRequest(http.MethodGet, apiBase+"/classes?department="+url.QueryEscape(department), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list classes returned %d", resp.StatusCode)
	}
	var body struct {
		Data []models.AvailableClass `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	for i := range body.Data {
		if body.Data[i].CourseCode == key.CourseCode && body.Data[i].SectionNumber == key.SectionNumber {
			return &body.Data[i], nil
		}
	}
	return nil, errors.New("section not listed for department")
}

func tally(attempts []attempt) summary {
	s := summary{Outcomes: map[string]int{}}
	for _, a := range attempts {
		if a.Err != nil {
			s.Errors++
			continue
		}
		s.Outcomes[a.Outcome]++
		if a.Duration > s.Slowest {
			s.Slowest = a.Duration
		}
	}
	return s
}

func checkInvariants(before, after snapshot, s summary) []string {
	var problems []string
	if after.Section.CurrentEnrollment > after.Section.MaxEnrollment {
		problems = append(problems, fmt.Sprintf("current_enrollment %d exceeds max_enrollment %d", after.Section.CurrentEnrollment, after.Section.MaxEnrollment))
	}
	enrolled := s.Outcomes[string(models.DecisionEnrolled)]
	if gained := after.Section.CurrentEnrollment - before.Section.CurrentEnrollment; gained != enrolled {
		problems = append(problems, fmt.Sprintf("%d enrolled responses but counter moved by %d", enrolled, gained))
	}
	if open := before.Section.MaxEnrollment - before.Section.CurrentEnrollment; enrolled > open {
		problems = append(problems, fmt.Sprintf("%d students enrolled into %d open seats", enrolled, open))
	}
	waitlisted := s.Outcomes[string(models.DecisionWaitlisted)]
	if room := before.Section.Waitlist - before.Waitlisted; waitlisted > room {
		problems = append(problems, fmt.Sprintf("%d students waitlisted into %d free waitlist spots", waitlisted, room))
	}
	if joined := after.Waitlisted - before.Waitlisted; joined != waitlisted {
		problems = append(problems, fmt.Sprintf("%d waitlisted responses but roster grew by %d", waitlisted, joined))
	}
	if after.Waitlisted > after.Section.Waitlist {
		problems = append(problems, fmt.Sprintf("waitlist holds %d students beyond capacity %d", after.Waitlisted, after.Section.Waitlist))
	}
	return problems
}

func printReport(w io.Writer, key models.SectionKey, before, after snapshot, s summary) {
	fmt.Fprintf(w, "Section %s: %d/%d before, %d/%d after\n", key, before.Section.CurrentEnrollment, before.Section.MaxEnrollment, after.Section.CurrentEnrollment, after.Section.MaxEnrollment)
	fmt.Fprintf(w, "Waitlist: %d/%d before, %d/%d after\n", before.Waitlisted, before.Section.Waitlist, after.Waitlisted, after.Section.Waitlist)
	outcomes := make([]string, 0, len(s.Outcomes))
	for outcome := range s.Outcomes {
		outcomes = append(outcomes, outcome)
	}
	sort.Strings(outcomes)
	fmt.Fprintf(w, "%-20s %s\n", "OUTCOME", "COUNT")
	for _, outcome := range outcomes {
		fmt.Fprintf(w, "%-20s %d\n", outcome, s.Outcomes[outcome])
	}
	fmt.Fprintf(w, "transport errors: %d, slowest attempt: %s\n", s.Errors, s.Slowest)
}
