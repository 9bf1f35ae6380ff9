package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/core/domain"
	"idle-resource-hub/internal/pkg/dates"
	"idle-resource-hub/internal/pkg/pagination"
)

func TestCreate_DefaultsAndVersion(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")

	result := f.createResource(t, emp.ID, nil)

	if result.Version != 1 {
		t.Errorf("expected version 1, got %d", result.Version)
	}
	if result.ResourceType != string(domain.ResourceDeveloper) {
		t.Errorf("expected default resource type developer, got %s", result.ResourceType)
	}
	if result.Status != string(domain.StatusAvailable) {
		t.Errorf("expected default status available, got %s", result.Status)
	}
	if result.EmployeeName != "Ada Lovelace" {
		t.Errorf("expected employee name Ada Lovelace, got %s", result.EmployeeName)
	}
	if result.AuditTrailID == "" {
		t.Error("expected audit trail id")
	}
	if len(result.ValidationWarnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.ValidationWarnings)
	}
}

func TestCreate_SecondActiveRecordWarns(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	f.createResource(t, emp.ID, nil)

	second := f.createResource(t, emp.ID, nil)

	if len(second.ValidationWarnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(second.ValidationWarnings))
	}
	if second.ValidationWarnings[0].Code != domain.CodeDuplicateActive {
		t.Errorf("expected code %s, got %s", domain.CodeDuplicateActive, second.ValidationWarnings[0].Code)
	}
}

func TestCreate_CollectsAllFieldErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.resources.Create(context.Background(), &ResourceInput{
		EmployeeID:        uintPtr(999),
		ResourceType:      strPtr("astronaut"),
		AvailabilityStart: day(2025, 6, 1),
		AvailabilityEnd:   day(2025, 5, 1),
		ExperienceYears:   intPtr(-1),
	}, managerActor)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	codes := map[string]string{}
	for _, fe := range ve.Fields {
		codes[fe.Field] = fe.Code
	}
	expected := map[string]string{
		"employeeId":      domain.CodeInvalidReference,
		"resourceType":    domain.CodeInvalidChoice,
		"availabilityEnd": domain.CodeInvalidDateRange,
		"experienceYears": domain.CodeOutOfRange,
	}
	for field, code := range expected {
		if codes[field] != code {
			t.Errorf("expected %s on %s, got %q", code, field, codes[field])
		}
	}
}

func TestCreate_InactiveEmployeeRejected(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	if err := f.db.Model(emp).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate employee: %v", err)
	}

	_, err := f.resources.Create(context.Background(), &ResourceInput{EmployeeID: &emp.ID}, managerActor)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Fields[0].Code != domain.CodeInvalidReference {
		t.Errorf("expected %s, got %s", domain.CodeInvalidReference, ve.Fields[0].Code)
	}
}

func TestUpdate_BumpsVersion(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)

	result, err := f.resources.Update(context.Background(), created.ID, &ResourceInput{
		Status:  strPtr("unavailable"),
		Version: intPtr(1),
	}, managerActor)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if result.Version != 2 {
		t.Errorf("expected version 2, got %d", result.Version)
	}
	if result.Status != "unavailable" {
		t.Errorf("expected status unavailable, got %s", result.Status)
	}
	if len(result.ChangedFields) != 1 || result.ChangedFields[0] != "status" {
		t.Errorf("expected changed fields [status], got %v", result.ChangedFields)
	}
}

func TestUpdate_StaleVersionConflicts(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)

	if _, err := f.resources.Update(context.Background(), created.ID, &ResourceInput{
		ExperienceYears: intPtr(6),
		Version:         intPtr(1),
	}, managerActor); err != nil {
		t.Fatalf("first update failed: %v", err)
	}

	_, err := f.resources.Update(context.Background(), created.ID, &ResourceInput{
		ExperienceYears: intPtr(7),
		Version:         intPtr(1),
	}, managerActor)

	var conflict *domain.VersionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
	if conflict.CurrentVersion != 2 || conflict.ProvidedVersion != 1 {
		t.Errorf("expected current 2 provided 1, got current %d provided %d", conflict.CurrentVersion, conflict.ProvidedVersion)
	}

	stored, err := f.resources.Get(context.Background(), created.ID, false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ExperienceYears != 6 {
		t.Errorf("expected experience 6 to survive, got %d", stored.ExperienceYears)
	}
}

func TestUpdate_LostRaceReportsCurrentVersion(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)

	// a concurrent writer lands between our read and our write
	if err := f.db.Model(&models.IdleResource{}).Where("id = ?", created.ID).Update("version", 3).Error; err != nil {
		t.Fatalf("failed to bump version: %v", err)
	}

	rows, err := f.resourceRepo.UpdateWithVersion(context.Background(), created.ID, map[string]interface{}{"experience_years": 9}, 1)
	if err != nil {
		t.Fatalf("versioned update failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 rows for a stale version, got %d", rows)
	}

	err = f.resources.conflictAfterRace(context.Background(), f.resourceRepo, created.ID, 1)
	var conflict *domain.VersionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
	if conflict.CurrentVersion != 3 || conflict.ProvidedVersion != 1 {
		t.Errorf("expected current 3 provided 1, got current %d provided %d", conflict.CurrentVersion, conflict.ProvidedVersion)
	}

	stored, err := f.resources.Get(context.Background(), created.ID, false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ExperienceYears != 5 {
		t.Errorf("expected experience 5 to survive, got %d", stored.ExperienceYears)
	}
}

func TestUpdate_PaddedValuesAreUnchanged(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)

	result, err := f.resources.Update(context.Background(), created.ID, &ResourceInput{
		ResourceType: strPtr(" developer "),
		Status:       strPtr("available "),
		Version:      intPtr(1),
	}, managerActor)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(result.ChangedFields) != 0 {
		t.Errorf("expected no changed fields, got %v", result.ChangedFields)
	}

	result, err = f.resources.Update(context.Background(), created.ID, &ResourceInput{
		Status:  strPtr(" unavailable "),
		Version: intPtr(result.Version),
	}, managerActor)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if result.Status != "unavailable" {
		t.Errorf("expected trimmed status, got %q", result.Status)
	}
	if len(result.ChangedFields) != 1 || result.ChangedFields[0] != "status" {
		t.Errorf("expected changed fields [status], got %v", result.ChangedFields)
	}
}

func TestUpdate_IdleToDateAliasReportsOwnField(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)

	_, err := f.resources.Update(context.Background(), created.ID, &ResourceInput{
		IdleToDate: day(2025, 1, 1),
		Version:    intPtr(1),
	}, managerActor)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Fields[0].Field != "idleToDate" || ve.Fields[0].Code != domain.CodeInvalidDateRange {
		t.Errorf("expected INVALID_DATE_RANGE on idleToDate, got %s on %s", ve.Fields[0].Code, ve.Fields[0].Field)
	}
}

func TestDelete_SoftThenHidden(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)

	result, err := f.resources.Delete(context.Background(), created.ID, &DeleteInput{Reason: "left project"}, managerActor)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if result.State != string(domain.StateSoftDeleted) {
		t.Errorf("expected state %s, got %s", domain.StateSoftDeleted, result.State)
	}
	if result.Version != 2 {
		t.Errorf("expected version 2, got %d", result.Version)
	}

	if _, err := f.resources.Get(context.Background(), created.ID, false); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("expected ErrResourceNotFound, got %v", err)
	}
	stored, err := f.resources.Get(context.Background(), created.ID, true)
	if err != nil {
		t.Fatalf("get with includeDeleted failed: %v", err)
	}
	if stored.Status != string(domain.StatusDeleted) {
		t.Errorf("expected status deleted, got %s", stored.Status)
	}
}

func TestDelete_HardRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)

	_, err := f.resources.Delete(context.Background(), created.ID, &DeleteInput{DeleteType: "hard"}, managerActor)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	result, err := f.resources.Delete(context.Background(), created.ID, &DeleteInput{DeleteType: "hard"}, adminActor)
	if err != nil {
		t.Fatalf("hard delete failed: %v", err)
	}
	if result.State != string(domain.StatePurged) {
		t.Errorf("expected state %s, got %s", domain.StatePurged, result.State)
	}
	if _, err := f.resources.Get(context.Background(), created.ID, true); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("expected purged record to be gone, got %v", err)
	}
}

func TestDelete_UnknownType(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, emp.ID, nil)

	_, err := f.resources.Delete(context.Background(), created.ID, &DeleteInput{DeleteType: "shred"}, adminActor)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestList_FiltersAndAggregations(t *testing.T) {
	f := newFixture(t)
	ada := f.addEmployee(t, "E001", "Ada", "Lovelace")
	alan := f.addEmployee(t, "E002", "Alan", "Turing")
	grace := f.addEmployee(t, "E003", "Grace", "Hopper")

	f.createResource(t, ada.ID, nil)
	f.createResource(t, alan.ID, func(in *ResourceInput) {
		in.ResourceType = strPtr("tester")
		in.Skills = []string{"Selenium"}
		in.ExperienceYears = intPtr(2)
	})
	deleted := f.createResource(t, grace.ID, nil)
	if _, err := f.resources.Delete(context.Background(), deleted.ID, &DeleteInput{}, managerActor); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	result, err := f.resources.List(context.Background(), ListFilter{}, pagination.New(1, 25), Sorting{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if result.TotalCount != 2 {
		t.Errorf("expected 2 live records, got %d", result.TotalCount)
	}
	if result.Aggregations["byResourceType"]["tester"] != 1 {
		t.Errorf("expected 1 tester in aggregations, got %v", result.Aggregations["byResourceType"])
	}

	result, err = f.resources.List(context.Background(), ListFilter{Skills: []string{"go"}, MinExperience: intPtr(3)}, pagination.New(1, 25), Sorting{})
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if result.TotalCount != 1 || result.Records[0].EmployeeID != ada.ID {
		t.Errorf("expected only Ada's record, got %d records", result.TotalCount)
	}

	result, err = f.resources.List(context.Background(), ListFilter{IncludeDeleted: true}, pagination.New(1, 25), Sorting{})
	if err != nil {
		t.Fatalf("list with deleted failed: %v", err)
	}
	if result.TotalCount != 3 {
		t.Errorf("expected 3 records including deleted, got %d", result.TotalCount)
	}
}

func listCount(t *testing.T, f *fixture, filter ListFilter) int64 {
	t.Helper()
	result, err := f.resources.List(context.Background(), filter, pagination.New(1, 25), Sorting{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	return result.TotalCount
}

func timePtr(d *dates.Time) *time.Time {
	v := d.Time
	return &v
}

func TestList_SkillFilterMatchesLiterally(t *testing.T) {
	f := newFixture(t)
	ada := f.addEmployee(t, "E001", "Ada", "Lovelace")
	alan := f.addEmployee(t, "E002", "Alan", "Turing")
	grace := f.addEmployee(t, "E003", "Grace", "Hopper")
	f.createResource(t, ada.ID, func(in *ResourceInput) { in.Skills = []string{"R&D", "C<T>"} })
	f.createResource(t, alan.ID, func(in *ResourceInput) { in.Skills = []string{"Go"} })
	f.createResource(t, grace.ID, func(in *ResourceInput) { in.Skills = []string{"100% uptime", "snake_case"} })

	tests := []struct {
		skill string
		want  int64
	}{
		{"R&D", 1},
		{"r&d", 1},
		{"C<T>", 1},
		{"G_", 0},
		{"%", 1},
		{"0% up", 1},
		{"snake_case", 1},
		{"snake!case", 0},
		{"e_c", 1},
	}
	for _, tt := range tests {
		if got := listCount(t, f, ListFilter{Skills: []string{tt.skill}}); got != tt.want {
			t.Errorf("skills=%q: expected %d records, got %d", tt.skill, tt.want, got)
		}
	}

	stored, err := f.resources.List(context.Background(), ListFilter{EmployeeID: &ada.ID}, pagination.New(1, 25), Sorting{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if got := stored.Records[0].Skills; len(got) != 2 || got[0] != "R&D" || got[1] != "C<T>" {
		t.Errorf("expected skills to round-trip unchanged, got %v", got)
	}
}

func TestList_SkillAndStatusScenario(t *testing.T) {
	f := newFixture(t)
	ada := f.addEmployee(t, "E001", "Ada", "Lovelace")
	created := f.createResource(t, ada.ID, func(in *ResourceInput) { in.Skills = []string{"Python", "Django"} })

	result, err := f.resources.List(context.Background(), ListFilter{Skills: []string{"Python"}, Status: "available"}, pagination.New(1, 25), Sorting{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if result.TotalCount != 1 || result.Records[0].ID != created.ID {
		t.Errorf("expected the Python record, got %d records", result.TotalCount)
	}

	if got := listCount(t, f, ListFilter{Skills: []string{"Java"}}); got != 0 {
		t.Errorf("expected no Java records, got %d", got)
	}
}

func TestList_StatusAndDepartmentFilters(t *testing.T) {
	f := newFixture(t)
	ada := f.addEmployee(t, "E001", "Ada", "Lovelace")
	f.createResource(t, ada.ID, nil)

	qa := &models.Department{Name: "Quality", Code: "QA", IsActive: true}
	if err := f.db.Create(qa).Error; err != nil {
		t.Fatalf("failed to create department: %v", err)
	}
	alan := f.addEmployee(t, "E002", "Alan", "Turing")
	if err := f.db.Model(alan).Update("department_id", qa.ID).Error; err != nil {
		t.Fatalf("failed to move employee: %v", err)
	}
	f.createResource(t, alan.ID, func(in *ResourceInput) { in.Status = strPtr("unavailable") })

	if got := listCount(t, f, ListFilter{DepartmentID: &qa.ID}); got != 1 {
		t.Errorf("expected 1 record in QA, got %d", got)
	}
	if got := listCount(t, f, ListFilter{DepartmentID: &f.department.ID}); got != 1 {
		t.Errorf("expected 1 record in DEV, got %d", got)
	}
	if got := listCount(t, f, ListFilter{Status: "unavailable"}); got != 1 {
		t.Errorf("expected 1 unavailable record, got %d", got)
	}
	if got := listCount(t, f, ListFilter{Status: "available", DepartmentID: &qa.ID}); got != 0 {
		t.Errorf("expected no available records in QA, got %d", got)
	}
}

func TestList_AvailabilityWindowFilters(t *testing.T) {
	f := newFixture(t)
	ada := f.addEmployee(t, "E001", "Ada", "Lovelace")
	alan := f.addEmployee(t, "E002", "Alan", "Turing")
	bounded := f.createResource(t, ada.ID, nil)
	open := f.createResource(t, alan.ID, func(in *ResourceInput) { in.AvailabilityStart = day(2025, 5, 1) })
	if err := f.db.Model(&models.IdleResource{}).Where("id = ?", open.ID).Update("availability_end", nil).Error; err != nil {
		t.Fatalf("failed to clear end date: %v", err)
	}

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"from before open start", ListFilter{AvailableFrom: timePtr(day(2025, 4, 1))}, []string{bounded.ID}},
		{"until past bounded end", ListFilter{AvailableUntil: timePtr(day(2025, 8, 1))}, []string{open.ID}},
		{"both inside", ListFilter{AvailableFrom: timePtr(day(2025, 6, 1)), AvailableUntil: timePtr(day(2025, 6, 15))}, []string{bounded.ID, open.ID}},
		{"from before any start", ListFilter{AvailableFrom: timePtr(day(2025, 1, 1))}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.resources.List(context.Background(), tt.filter, pagination.New(1, 25), Sorting{SortBy: "availabilityStart", SortOrder: "asc"})
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(result.Records) != len(tt.want) {
				t.Fatalf("expected %d records, got %d", len(tt.want), len(result.Records))
			}
			for i, id := range tt.want {
				if result.Records[i].ID != id {
					t.Errorf("expected record %d to be %s, got %s", i, id, result.Records[i].ID)
				}
			}
		})
	}

	// a null start is open-ended too
	if err := f.db.Model(&models.IdleResource{}).Where("id = ?", open.ID).Update("availability_start", nil).Error; err != nil {
		t.Fatalf("failed to clear start date: %v", err)
	}
	if got := listCount(t, f, ListFilter{AvailableFrom: timePtr(day(2025, 1, 1))}); got != 1 {
		t.Errorf("expected the open-ended record only, got %d", got)
	}
}

func TestList_SortingAndPaging(t *testing.T) {
	f := newFixture(t)
	for i, years := range []int{4, 9, 1} {
		emp := f.addEmployee(t, "E00"+string(rune('1'+i)), "Dev", "Number")
		f.createResource(t, emp.ID, func(in *ResourceInput) { in.ExperienceYears = intPtr(years) })
	}

	result, err := f.resources.List(context.Background(), ListFilter{}, pagination.New(1, 2), Sorting{SortBy: "experienceYears", SortOrder: "desc"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected page of 2, got %d", len(result.Records))
	}
	if result.Records[0].ExperienceYears != 9 || result.Records[1].ExperienceYears != 4 {
		t.Errorf("expected 9 then 4, got %d then %d", result.Records[0].ExperienceYears, result.Records[1].ExperienceYears)
	}
	if !result.PageInfo.HasNextPage {
		t.Error("expected another page")
	}
}

func TestList_RejectsBadParameters(t *testing.T) {
	f := newFixture(t)

	_, err := f.resources.List(context.Background(), ListFilter{Status: "sleeping"}, pagination.New(1, 25), Sorting{SortBy: "password", SortOrder: "sideways"})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields) != 3 {
		t.Errorf("expected 3 field errors, got %d: %v", len(ve.Fields), ve.Fields)
	}
}

func TestSearch_RanksBySkillMatch(t *testing.T) {
	f := newFixture(t)
	ada := f.addEmployee(t, "E001", "Ada", "Lovelace")
	adam := f.addEmployee(t, "E002", "Adam", "Smith")
	f.createResource(t, adam.ID, func(in *ResourceInput) { in.Skills = []string{"Golang"} })
	f.createResource(t, ada.ID, func(in *ResourceInput) { in.Skills = []string{"Go"} })

	result, err := f.resources.Search(context.Background(), &SearchInput{Query: "go"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if result.TotalCount != 2 {
		t.Fatalf("expected 2 hits, got %d", result.TotalCount)
	}
	if result.Results[0].EmployeeID != ada.ID {
		t.Errorf("expected exact skill match first, got employee %d", result.Results[0].EmployeeID)
	}
	if result.Results[0].RelevanceScore <= result.Results[1].RelevanceScore {
		t.Errorf("expected descending scores, got %v then %v", result.Results[0].RelevanceScore, result.Results[1].RelevanceScore)
	}

	result, err = f.resources.Search(context.Background(), &SearchInput{Query: "e002"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if result.TotalCount != 1 || result.Results[0].RelevanceScore != 0.7 {
		t.Errorf("expected one employee number hit scored 0.7, got %d hits", result.TotalCount)
	}
}

func TestValidateData_ReportsWithoutWriting(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "E001", "Ada", "Lovelace")

	report, err := f.resources.ValidateData(context.Background(), &ResourceInput{
		EmployeeID:   &emp.ID,
		IdleFromDate: day(2025, 5, 1),
		IdleToDate:   day(2025, 4, 1),
	})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if report.IsValid {
		t.Error("expected invalid report")
	}
	if report.ErrorCount != 1 || report.ValidationResults[0].Field != "idleToDate" {
		t.Errorf("expected one error on idleToDate, got %v", report.ValidationResults)
	}
	if len(report.Suggestions) != 1 || report.Suggestions[0].Suggestion != "Set date to 2025-05-02 or later" {
		t.Errorf("unexpected suggestions %v", report.Suggestions)
	}

	var count int64
	f.db.Table("idle_resources").Count(&count)
	if count != 0 {
		t.Errorf("expected nothing stored, got %d rows", count)
	}
}
