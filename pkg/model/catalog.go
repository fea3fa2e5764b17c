package model

var (
	genderOptions   = []string{"Male", "Female", "Non-binary", "Other"}
	skillOptions    = []string{"Beginner", "Intermediate", "Advanced"}
	yesNoOptions    = []string{"Yes", "No"}
	workPrefOptions = []string{"Remote", "On-site", "Hybrid"}
)

// Page titles for the default career profile partition.
const (
	PageBasicInformation = "Basic Information"
	PageSkillsInterests  = "Skills and Interests"
	PageExperience       = "Experience and Preferences"
)

// CareerProfileFields returns the student profile catalog in page order.
func CareerProfileFields() []Field {
	return []Field{
		// Basic information.
		{Name: "studentId", Kind: FieldKindText, Label: "Student ID", Placeholder: "e.g., CS2023123", Required: true},
		{Name: "name", Kind: FieldKindText, Label: "Name", Placeholder: "e.g., Priya Sharma", Required: true},
		{Name: "gender", Kind: FieldKindSelect, Label: "Gender", Description: "Select your gender identity", Options: genderOptions, Required: true},
		{Name: "age", Kind: FieldKindNumber, Label: "Age", Placeholder: "e.g., 21", Description: "Your age in years", Required: true},
		{
			Name:        "gpa",
			Kind:        FieldKindNumber,
			Label:       "GPA",
			Placeholder: "e.g., 8.7",
			Description: "Grade Point Average on 10-point scale",
			Required:    true,
			Validations: []ValidationRule{
				bound(ValidationRuleMin, "0"),
				bound(ValidationRuleMax, "10"),
				bound(ValidationRuleStep, "0.1"),
			},
		},
		{Name: "major", Kind: FieldKindText, Label: "Major", Placeholder: "e.g., Computer Science", Description: "Your core discipline", Required: true},
		{Name: "concentration", Kind: FieldKindText, Label: "Concentration", Placeholder: "e.g., Artificial Intelligence", Description: "Area of specialization within your major", Required: true},

		// Skills and interests.
		{Name: "interestedDomain", Kind: FieldKindText, Label: "Interested Domain", Placeholder: "e.g., Data Science", Description: "Your preferred future work domain", Required: true},
		{Name: "projects", Kind: FieldKindNumber, Label: "Projects", Placeholder: "e.g., 5", Description: "Number of significant academic or personal projects", Required: true},
		{Name: "futureCareer", Kind: FieldKindText, Label: "Future Career", Placeholder: "e.g., Data Scientist", Description: "Your targeted or expected job role", Required: true},
		{Name: "python", Kind: FieldKindSelect, Label: "Python Skills", Description: "Your proficiency level in Python", Options: skillOptions, Required: true},
		{Name: "sql", Kind: FieldKindSelect, Label: "SQL Skills", Description: "Your proficiency level in SQL", Options: skillOptions, Required: true},
		{Name: "java", Kind: FieldKindSelect, Label: "Java Skills", Description: "Your proficiency level in Java", Options: skillOptions, Required: true},
		{Name: "programmingLanguages", Kind: FieldKindText, Label: "Other Programming Languages", Placeholder: "e.g., Python, Java, C++", Description: "Comma-separated list of other languages you know", Required: true},

		// Experience and preferences.
		{Name: "certifications", Kind: FieldKindText, Label: "Certifications", Placeholder: "e.g., Google Data Analytics, AWS CP", Description: "Names of your completed certifications", Required: true},
		{Name: "internshipExperience", Kind: FieldKindSelect, Label: "Internship Experience", Description: "Do you have any internship experience?", Options: yesNoOptions, Required: true},
		{Name: "researchExperience", Kind: FieldKindSelect, Label: "Research Experience", Description: "Do you have any research experience?", Options: yesNoOptions, Required: true},
		{Name: "expectedGraduationYear", Kind: FieldKindNumber, Label: "Expected Graduation Year", Placeholder: "e.g., 2025", Description: "Your final year of degree program", Required: true},
		{Name: "workPreference", Kind: FieldKindSelect, Label: "Work Preference", Description: "Your preferred work arrangement", Options: workPrefOptions, Required: true},
		{Name: "hackathonsAttended", Kind: FieldKindNumber, Label: "Hackathons Attended", Placeholder: "e.g., 3", Description: "Number of hackathons you've participated in", Required: true},
		{Name: "leadershipRole", Kind: FieldKindText, Label: "Leadership Role", Placeholder: "e.g., Technical Club Secretary", Description: `Any leadership positions held (e.g., "Class Representative", "Club President", "None")`, Required: true},
	}
}

// CareerProfilePages returns the 7/7/7 page layout of the catalog.
func CareerProfilePages() []Page {
	return []Page{
		{
			Title:  PageBasicInformation,
			Fields: []string{"studentId", "name", "gender", "age", "gpa", "major", "concentration"},
		},
		{
			Title:  PageSkillsInterests,
			Fields: []string{"interestedDomain", "projects", "futureCareer", "python", "sql", "java", "programmingLanguages"},
		},
		{
			Title:  PageExperience,
			Fields: []string{"certifications", "internshipExperience", "researchExperience", "expectedGraduationYear", "workPreference", "hackathonsAttended", "leadershipRole"},
		},
	}
}

// DefaultRegistry builds the career profile registry.
func DefaultRegistry() *Registry {
	return MustRegistry(CareerProfileFields()...)
}

// DefaultPartition builds the career profile registry and its page layout.
func DefaultPartition() *Partition {
	return MustPartition(DefaultRegistry(), CareerProfilePages()...)
}
