package e2e

import (
	"context"
	"testing"

	"github.com/padaiyal/learnify-e2e/harness"
	"github.com/stretchr/testify/suite"
)

// browserSuite runs one catalogue suite against a single browser session.
type browserSuite struct {
	suite.Suite
	Name       string
	Strictness harness.Strictness
	spec       harness.SuiteSpec
	session    *harness.Session
	runner     *harness.Runner
	ctx        context.Context
	cancel     context.CancelFunc
}

func (s *browserSuite) SetupSuite() {
	t := s.T()
	if testing.Short() {
		t.Skip("Skipping browser tests in short mode")
	}

	var err error
	s.spec, err = Catalogue.Suite(s.Name)
	s.Require().NoError(err)

	t.Logf("Running %s suite in %s mode against %s", s.Name, s.Strictness, Config.BaseURL)
	s.ctx, s.cancel = context.WithTimeout(context.Background(), SuiteTimeout)
	s.session = StartSession(t)
	s.runner = harness.NewRunner(s.session, s.Strictness, harness.WithLogger(Logger.Named(s.Name)))
}

func (s *browserSuite) TearDownSuite() {
	if s.session != nil {
		if err := s.session.Close(); err != nil {
			s.T().Logf("Error closing browser session: %s", err)
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *browserSuite) runCase(name string) {
	t := s.T()
	spec, ok := s.spec.Case(name)
	s.Require().Truef(ok, "case %s is not in suite %s", name, s.Name)

	out := s.runner.RunSuiteCase(s.ctx, s.Name, spec)
	recordOutcome(s.Strictness, out)
	ReportOutcome(t, out)
}

type UserTestSuite struct {
	browserSuite
}

func (s *UserTestSuite) TestAuthPage()          { s.runCase("auth-page") }
func (s *UserTestSuite) TestNotFound()          { s.runCase("not-found") }
func (s *UserTestSuite) TestUserDashboard()     { s.runCase("user-dashboard") }
func (s *UserTestSuite) TestAvailableCourses()  { s.runCase("available-courses") }
func (s *UserTestSuite) TestEnrolledCourses()   { s.runCase("enrolled-courses") }
func (s *UserTestSuite) TestQuiz()              { s.runCase("quiz") }
func (s *UserTestSuite) TestProfileManagement() { s.runCase("profile-management") }
func (s *UserTestSuite) TestNotifications()     { s.runCase("notifications") }
func (s *UserTestSuite) TestCertifications()    { s.runCase("certifications") }
func (s *UserTestSuite) TestDashboardMobile()   { s.runCase("dashboard-mobile") }

type AdminTestSuite struct {
	browserSuite
}

func (s *AdminTestSuite) TestAdminDashboard()  { s.runCase("admin-dashboard") }
func (s *AdminTestSuite) TestAdminAllCourses() { s.runCase("admin-all-courses") }

type InteractionsTestSuite struct {
	browserSuite
}

func (s *InteractionsTestSuite) TestAppRoot()                 { s.runCase("app-root") }
func (s *InteractionsTestSuite) TestLoadingSpinner()          { s.runCase("loading-spinner") }
func (s *InteractionsTestSuite) TestSidebar()                 { s.runCase("sidebar") }
func (s *InteractionsTestSuite) TestCourseNavigation()        { s.runCase("course-navigation") }
func (s *InteractionsTestSuite) TestCourseSearch()            { s.runCase("course-search") }
func (s *InteractionsTestSuite) TestQuizComponent()           { s.runCase("quiz-component") }
func (s *InteractionsTestSuite) TestProfilePage()             { s.runCase("profile-page") }
func (s *InteractionsTestSuite) TestMobileSidebarToggle()     { s.runCase("mobile-sidebar-toggle") }
func (s *InteractionsTestSuite) TestAdminDashboardComponent() { s.runCase("admin-dashboard-component") }

// CatalogueCoverageSuite keeps the test methods above in step with the catalogue.
type CatalogueCoverageSuite struct {
	suite.Suite
}

func (s *CatalogueCoverageSuite) TestEveryCaseHasATest() {
	methods := map[string]int{"user": 10, "admin": 2, "interactions": 9}
	for _, spec := range Catalogue.Suites {
		want, ok := methods[spec.Name]
		s.Truef(ok, "suite %s has no test suite", spec.Name)
		s.Lenf(spec.Cases, want, "suite %s changed, update its test methods", spec.Name)
	}
}
