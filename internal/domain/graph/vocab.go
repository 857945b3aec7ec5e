package graph

// Well-known predicate ids.
const (
	PredicateHasContribution        ThingID = "P31"
	PredicateHasResearchField       ThingID = "P30"
	PredicateHasAuthors             ThingID = "hasAuthors"
	PredicateHasListElement         ThingID = "hasListElement"
	PredicateHasDOI                 ThingID = "P26"
	PredicateHasISBN                ThingID = "HAS_ISBN"
	PredicateHasISSN                ThingID = "HAS_ISSN"
	PredicateHasArXiv               ThingID = "HAS_ARXIV"
	PredicateHasPubMed              ThingID = "HAS_PUBMED"
	PredicateHasHandle              ThingID = "HAS_HANDLE"
	PredicateMonth                  ThingID = "P28"
	PredicateYear                   ThingID = "P29"
	PredicateHasVenue               ThingID = "HAS_VENUE"
	PredicateHasURL                 ThingID = "url"
	PredicateSustainableDevelopment ThingID = "sustainableDevelopmentGoal"
	PredicateDescription            ThingID = "description"
	PredicateHasSection             ThingID = "HasSection"
	PredicateHasEntry               ThingID = "HasEntry"
	PredicateHasHeadingLevel        ThingID = "HasHeadingLevel"
	PredicateHasContent             ThingID = "hasContent"
	PredicateHasLink                ThingID = "HasLink"
	PredicateHasSubject             ThingID = "HAS_SUBJECT"
	PredicateReference              ThingID = "reference"
	PredicateComparesContribution   ThingID = "compareContribution"
	PredicateIsAnonymized           ThingID = "IsAnonymized"
	PredicateORCID                  ThingID = "HAS_ORCID"
	PredicateGoogleScholar          ThingID = "googleScholarID"
	PredicateHomepage               ThingID = "website"

	PredicateShTargetClass ThingID = "sh:targetClass"
	PredicateShProperty    ThingID = "sh:property"
	PredicateShPath        ThingID = "sh:path"
	PredicateShOrder       ThingID = "sh:order"
	PredicateShMinCount    ThingID = "sh:minCount"
	PredicateShMaxCount    ThingID = "sh:maxCount"
	PredicateShDatatype    ThingID = "sh:datatype"
	PredicateShClass       ThingID = "sh:class"
	PredicateShPattern     ThingID = "sh:pattern"
	PredicateShMinIncl     ThingID = "sh:minInclusive"
	PredicateShMaxIncl     ThingID = "sh:maxInclusive"
	PredicateShClosed      ThingID = "sh:closed"

	PredicatePlaceholder               ThingID = "placeholder"
	PredicateTemplateLabelFormat       ThingID = "TemplateLabelFormat"
	PredicateTemplateOfResearchField   ThingID = "TemplateOfResearchField"
	PredicateTemplateOfResearchProblem ThingID = "TemplateOfResearchProblem"
	PredicateTemplateOfPredicate       ThingID = "TemplateOfPredicate"
)

// Well-known class ids.
const (
	ClassPaper          ThingID = "Paper"
	ClassContribution   ThingID = "Contribution"
	ClassAuthor         ThingID = "Author"
	ClassList           ThingID = "List"
	ClassResearchField  ThingID = "ResearchField"
	ClassProblem        ThingID = "Problem"
	ClassVenue          ThingID = "Venue"
	ClassSDG            ThingID = "SustainableDevelopmentGoal"
	ClassNodeShape      ThingID = "NodeShape"
	ClassPropertyShape  ThingID = "PropertyShape"
	ClassLiteratureList ThingID = "LiteratureList"
	ClassListSection    ThingID = "ListSection"
	ClassTextSection    ThingID = "TextSection"
	ClassEntry          ThingID = "Entry"
	ClassComparison     ThingID = "Comparison"
	ClassLiteral        ThingID = "Literal"
	ClassThing          ThingID = "Thing"
	ClassResource       ThingID = "Resource"
	ClassPredicate      ThingID = "Predicate"
	ClassClass          ThingID = "Class"
)

// Datatypes with value checks. Any other datatype is stored unchecked.
const (
	DatatypeString  = "xsd:string"
	DatatypeInteger = "xsd:integer"
	DatatypeDecimal = "xsd:decimal"
	DatatypeFloat   = "xsd:float"
	DatatypeBoolean = "xsd:boolean"
	DatatypeDate    = "xsd:date"
	DatatypeAnyURI  = "xsd:anyURI"
)

// reservedClasses may not be attached to resources defined in user content;
// they are owned by the dedicated content-type operations.
var reservedClasses = map[ThingID]struct{}{
	ClassPaper:          {},
	ClassContribution:   {},
	ClassComparison:     {},
	ClassNodeShape:      {},
	ClassPropertyShape:  {},
	ClassLiteratureList: {},
	ClassListSection:    {},
	ClassTextSection:    {},
	ClassList:           {},
	ClassLiteral:        {},
	ClassThing:          {},
	ClassResource:       {},
	ClassPredicate:      {},
	ClassClass:          {},
}

func IsReservedClass(id ThingID) bool {
	_, ok := reservedClasses[id]
	return ok
}

// BuiltinPredicates maps every well-known predicate to its label. Stores seed
// these on migration.
var BuiltinPredicates = map[ThingID]string{
	PredicateHasContribution:           "has contribution",
	PredicateHasResearchField:          "has research field",
	PredicateHasAuthors:                "has authors",
	PredicateHasListElement:            "has list element",
	PredicateHasDOI:                    "has DOI",
	PredicateHasISBN:                   "has ISBN",
	PredicateHasISSN:                   "has ISSN",
	PredicateHasArXiv:                  "has arXiv id",
	PredicateHasPubMed:                 "has PubMed id",
	PredicateHasHandle:                 "has handle",
	PredicateMonth:                     "publication month",
	PredicateYear:                      "publication year",
	PredicateHasVenue:                  "has publication venue",
	PredicateHasURL:                    "url",
	PredicateSustainableDevelopment:    "sustainable development goal",
	PredicateDescription:               "description",
	PredicateHasSection:                "has section",
	PredicateHasEntry:                  "has entry",
	PredicateHasHeadingLevel:           "has heading level",
	PredicateHasContent:                "has content",
	PredicateHasLink:                   "has link",
	PredicateHasSubject:                "has subject",
	PredicateReference:                 "reference",
	PredicateComparesContribution:      "compare contribution",
	PredicateIsAnonymized:              "is anonymized",
	PredicateORCID:                     "ORCID",
	PredicateGoogleScholar:             "Google Scholar id",
	PredicateHomepage:                  "website",
	PredicateShTargetClass:             "target class",
	PredicateShProperty:                "property",
	PredicateShPath:                    "path",
	PredicateShOrder:                   "order",
	PredicateShMinCount:                "min count",
	PredicateShMaxCount:                "max count",
	PredicateShDatatype:                "datatype",
	PredicateShClass:                   "class",
	PredicateShPattern:                 "pattern",
	PredicateShMinIncl:                 "min inclusive",
	PredicateShMaxIncl:                 "max inclusive",
	PredicateShClosed:                  "closed",
	PredicatePlaceholder:               "placeholder",
	PredicateTemplateLabelFormat:       "template label format",
	PredicateTemplateOfResearchField:   "template of research field",
	PredicateTemplateOfResearchProblem: "template of research problem",
	PredicateTemplateOfPredicate:       "template of predicate",
}

// BuiltinClasses maps every well-known class, including the checked xsd
// datatypes, to its label.
var BuiltinClasses = map[ThingID]string{
	ClassPaper:          "Paper",
	ClassContribution:   "Contribution",
	ClassAuthor:         "Author",
	ClassList:           "List",
	ClassResearchField:  "Research field",
	ClassProblem:        "Problem",
	ClassVenue:          "Venue",
	ClassSDG:            "Sustainable Development Goal",
	ClassNodeShape:      "Node shape",
	ClassPropertyShape:  "Property shape",
	ClassLiteratureList: "Literature list",
	ClassListSection:    "List section",
	ClassTextSection:    "Text section",
	ClassEntry:          "Entry",
	ClassComparison:     "Comparison",
	ClassLiteral:        "Literal",
	ClassThing:          "Thing",
	ClassResource:       "Resource",
	ClassPredicate:      "Predicate",
	ClassClass:          "Class",
	DatatypeString:      "String",
	DatatypeInteger:     "Integer",
	DatatypeDecimal:     "Decimal",
	DatatypeFloat:       "Float",
	DatatypeBoolean:     "Boolean",
	DatatypeDate:        "Date",
	DatatypeAnyURI:      "URI",
}
