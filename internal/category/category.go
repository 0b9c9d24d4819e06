// Package category maps free-text research topics onto a fixed set of broad
// categories using ordered keyword matching.
package category

import (
	"sort"
	"strings"

	"github.com/scholarboard/hix/internal/researcher"
)

// Default is assigned to topics that match no keyword.
const Default = "Other/Interdisciplinary"

type rule struct {
	name     string
	keywords []string
}

// rules is checked in order and the first matching keyword wins, so the
// more specific categories come first. Keywords are lower case; some carry
// a trailing space to avoid matching inside longer words.
var rules = []rule{
	// Medical specialties
	{"Oncology & Cancer", []string{
		"cancer", "tumor", "oncol", "leukemia", "lymphoma", "melanoma",
		"carcinoma", "myeloma", "sarcoma", "neoplasm", "metasta", "chemo",
		"radiother", "malignan",
	}},
	{"Cardiovascular", []string{
		"cardio", "heart", "cardiac", "coronary", "artery", "arterial",
		"vascular", "atheroscl", "myocard", "aortic", "hypertens", "stroke",
		"thromb", "aneurysm", "arrhythm", "atrial", "ventricul", "infarct",
		"angioplas", "stent", "ischemic", "hemodynam",
	}},
	{"Neuroscience & Neurology", []string{
		"neuro", "brain", "cognit", "alzheimer", "parkinson", "epilep",
		"cortex", "cerebr", "nervous system", "synap", "hippocam", "dementia",
		"multiple sclerosis", "spinal cord", "motor neuron", "neuropath",
		"amyotrophic", "als ", "huntington", "migraine", "headache",
		"circadian", "sleep", "melatonin",
	}},
	{"Infectious Disease", []string{
		"infect", "virus", "viral", "bacteri", "hiv", "hepatitis", "covid",
		"pathogen", "malaria", "tuberculosis", "antibiotic", "antimicrob",
		"sepsis", "influenza", "herpes", "parasit", "fungal", "mycobact",
		"vaccine", "ebola", "dengue", "zika", "leptospir", "syphilis",
		"chlamydia", "gonorrhea", "measles", "polio",
	}},
	{"Immunology", []string{
		"immun", "t-cell", "b-cell", "antibod", "cytokine", "inflamm",
		"autoimmun", "allerg", "lymphocyte", "macrophage", "interleukin",
		"toll-like", "complement", "antigen",
	}},
	{"Genetics & Genomics", []string{
		"gene", "genom", "dna", "rna", "epigene", "crispr", "mutation",
		"chromosome", "heredit", "genetic", "sequenc", "transcript",
		"methylat", "polymorphism", "allele", "genotype", "phenotype",
	}},
	{"Gastroenterology & Hepatology", []string{
		"gastro", "liver", "hepat", "intestin", "colon", "bowel", "gut ",
		"pancrea", "esophag", "stomach", "digest", "biliary", "gallbladder",
		"cirrhosis", "ibd", "crohn", "ulcer",
	}},
	{"Pulmonary & Respiratory", []string{
		"lung", "pulmon", "respiratory", "airway", "asthma", "copd",
		"bronch", "alveol", "pneumon", "thorac", "ventilat",
	}},
	{"Nephrology & Urology", []string{
		"kidney", "renal", "nephro", "urolog", "urin", "bladder", "prostat",
		"dialysis", "glomerul", "ureter",
	}},
	{"Endocrinology & Metabolism", []string{
		"endocrin", "hormone", "diabet", "insulin", "thyroid", "adrenal",
		"pituitary", "metabol", "obesity", "glucos", "lipid", "cholesterol",
		"vitamin d", "vitamin b", "nutrition", "diet", "calori",
	}},
	{"Ophthalmology", []string{
		"ophthalm", "eye ", "ocular", "retin", "cornea", "glauco", "cataract",
		"vision", "macular", "optic nerve",
	}},
	{"Dermatology", []string{
		"dermat", "skin ", "cutaneous", "epiderm", "psoriasis", "eczema",
		"wound heal",
	}},
	{"Orthopedics & Musculoskeletal", []string{
		"orthop", "bone ", "fractur", "joint", "arthrit", "osteopor",
		"musculoskel", "spine", "cartilage", "tendon", "ligament", "skeletal",
		"elbow", "knee", "hip ", "shoulder", "wrist", "ankle",
	}},
	{"Obstetrics & Gynecology", []string{
		"obstet", "gynec", "pregnan", "fetal", "maternal", "placenta",
		"uterine", "ovarian", "endometri", "menstrua", "fertility", "ivf",
	}},
	{"Pediatrics & Development", []string{
		"pediatr", "child", "infant", "neonat", "newborn", "adolesc",
		"developmental", "congenital", "birth defect",
	}},
	{"Psychiatry & Mental Health", []string{
		"psych", "mental health", "depress", "anxiety", "schizo", "bipolar",
		"addiction", "substance abuse", "ptsd", "autism", "adhd", "suicid",
		"eating disorder", "anorexia", "bulimia", "body image", "dysmorphi",
	}},
	{"Surgery & Surgical Specialties", []string{
		"surg", "transplant", "resection", "anastom", "laparoscop",
		"endoscop", "implant", "graft", "trauma", "emergenc",
	}},
	{"Radiology & Imaging", []string{
		"imaging", "mri", "ct scan", "radiol", "ultrasound", "pet scan",
		"x-ray", "mammogr", "tomograph", "fluoroscop", "angiogra",
		"segmentation", "dosimetr",
	}},
	{"Pharmacology & Drug Development", []string{
		"pharmaco", "drug ", "therapeutic", "medicin", "dosage", "toxicol",
		"pharmacokin", "clinical trial",
	}},
	{"Public Health & Epidemiology", []string{
		"public health", "epidemiol", "population health", "health policy",
		"health services", "healthcare system", "global health", "health disparit",
		"preventive", "screening", "outbreak", "mortality", "morbidity",
		"meta-analysis", "systematic review", "biomarker",
	}},
	{"Dentistry & Oral Health", []string{
		"dental", "tooth", "teeth", "oral ", "gingiv", "periodon",
		"endodont", "orthodont", "maxillofac", "mandib", "stoma",
	}},
	{"ENT & Audiology", []string{
		"hearing", "audiol", "cochlea", "deaf", "otolar", "ear ",
		"throat", "laryn", "vocal", "speech", "tinnitus", "vestibul",
		"head and neck", "oropharyn",
	}},
	{"Rheumatology", []string{
		"rheumat", "lupus", "connective tissue", "fibromyalg", "gout",
		"scleroderma", "vasculitis",
	}},
	{"Hematology", []string{
		"hematol", "blood ", "anemia", "hemoglobin", "coagul", "platelet",
		"hemophilia", "thrombo",
	}},
	{"Allergy & Asthma", []string{
		"allerg", "asthma", "anaphyla", "hypersensitiv",
	}},

	// Basic sciences
	{"Biochemistry & Molecular Biology", []string{
		"protein", "enzyme", "molecular", "biochem", "kinase", "receptor",
		"ligand", "pathway", "signaling", "cell cycle", "apoptosis",
		"mitochondri", "ribosom", "peptide", "collagen", "proteoglycan",
		"glycosaminoglycan", "phosphodiesterase",
	}},
	{"Cell Biology", []string{
		"cell ", "cellular", "stem cell", "organelle", "membrane",
		"cytoskeleton", "nucleus", "vesicle",
	}},

	// Physical sciences and engineering
	{"Physics & Astronomy", []string{
		"physic", "quantum", "particle", "hadron", "collid", "boson",
		"meson", "chromodynamic", "photon", "laser", "optic", "plasma",
		"condensed matter", "superconductor", "magnetic", "electr",
		"thermodynamic", "gravit", "cosmolog", "astrophys", "astrono",
		"dark matter", "galaxy", "stellar", "solar", "nuclear", "radioactiv",
		"radiation", "ion ", "neutron", "proton",
	}},
	{"Chemistry", []string{
		"chemi", "catalys", "reaction", "synthesis", "compound", "polymer",
		"organic", "inorganic", "electrochemi", "spectroscop", "crystal",
	}},
	{"Materials Science & Engineering", []string{
		"material", "nanotech", "nanowire", "nanoparticle", "alloy",
		"ceramic", "composite", "coating", "semiconductor", "biomaterial",
		"3d print", "additive manufactur", "metallurg", "corrosion",
		"concrete", "welding", "glass", "fiber",
	}},
	{"Computer Science & AI", []string{
		"comput", "algorithm", "machine learning", "deep learning",
		"artificial intellig", " ai ", "neural network", "data mining",
		"software", "programming", "cybersecur", "cryptograph", "blockchain",
		"natural language", "computer vision", "robotics", "vlsi", "fpga",
		"network", "internet", "database", "cloud", "petri net",
	}},
	{"Engineering", []string{
		"engineer", "circuit", "sensor", "signal process", "wireless",
		"antenna", "microelectron", "mems", "biomedical engineer", "device",
		"hvdc", "power system", "heat transfer", "boiling", "hydraulic",
		"propulsion", "rocket", "aerospace", "vehicle", "automotive",
		"mechanical", "fluid", "turbine", "combustion", "fuel cell",
		"energy harvest", "solar cell", "battery", "motor", "rotor",
		"vibration", "noise", "fatigue", "stress analysis", "brake",
		"welding", "machining", "manufactur",
	}},

	// Life sciences
	{"Ecology & Environmental Science", []string{
		"ecolog", "ecosystem", "environment", "climate", "biodiversity",
		"conservation", "pollution", "sustainab", "carbon", "marine",
		"freshwater", "wildlife", "habitat", "biofuel", "biogas",
		"waste", "recycl", "water treatment", "air quality",
	}},
	{"Plant Science & Agriculture", []string{
		"plant", "botan", "crop", "agricultur", "seed", "soil",
		"photosynthesis", "chlorophyll", "weed", "herbicide", "forestry",
		"pest", "insect", "fruit", "vegetable", "grain", "rice", "wheat",
		"soybean", "maize", "cotton", "ginger", "cucurbit",
	}},
	{"Zoology & Animal Science", []string{
		"animal", "zoolog", "insect", "fish", "bird", "mammal", "reptile",
		"amphibian", "invertebrate", "beetle", "bee ", "ant ", "spider",
		"coleoptera", "hymenoptera", "entomolog", "veterinar", "livestock",
		"poultry", "aquaculture",
	}},
	{"Microbiology", []string{
		"microb", "bacteri", "yeast", "biofilm", "probiotic", "ferment",
	}},
	{"Paleontology & Geology", []string{
		"paleontol", "fossil", "geolog", "stratigraph", "seism", "earthquak",
		"volcanic", "tectonic", "sediment", "mineral", "petrol", "oil ",
		"gas ", "mining", "ore ",
	}},

	// Social sciences and humanities
	{"Economics & Business", []string{
		"econom", "financ", "market", "business", "trade", "investment",
		"banking", "monetary", "fiscal", "entrepreneur", "management",
		"accounting", "consumer", "franchise", "intellectual capital",
		"supply chain", "logistics",
	}},
	{"Social Sciences", []string{
		"social", "sociolog", "anthropolog", "demograph", "migration",
		"ethnic", "gender", "inequality", "poverty", "urban", "rural",
		"community", "family", "crime", "justice", "law ", "legal",
		"policy", "governance", "politic", "census", "population",
		"employment", "welfare", "housing",
	}},
	{"Education", []string{
		"education", "learning", "teaching", "curriculum", "student",
		"school", "university", "academic", "pedagog", "literacy",
	}},
	{"Psychology", []string{
		"psychology", "behavior", "cognitive", "emotion", "personality",
		"memory", "attention", "perception", "motivation",
	}},
	{"Humanities", []string{
		"histor", "philosophy", "literature", "linguist", "language",
		"culture", "religion", "art ", "music", "archaeolog", "ethics",
		"fashion", "textile", "media", "communication", "discourse",
	}},

	// Mathematics
	{"Mathematics & Statistics", []string{
		"mathematic", "statistic", "algebra", "geometry", "calculus",
		"probability", "stochastic", "optimization", "regression",
		"bayesian", "topology", "differential equation", "graph theory",
		"game theory", "queuing", "combinatori", "number theory",
	}},
}

// Categorize returns the category of a single topic name.
func Categorize(topic string) string {
	t := strings.ToLower(topic)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(t, kw) {
				return r.name
			}
		}
	}
	return Default
}

// Primary returns the category of a researcher's first topic, which the
// sync stores in descending count order. No topics means Default.
func Primary(topics []researcher.Topic) string {
	if len(topics) == 0 {
		return Default
	}
	return Categorize(topics[0].Name)
}

// Names lists every category in priority order, followed by Default.
func Names() []string {
	names := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		names = append(names, r.name)
	}
	return append(names, Default)
}

// Count is the number of topics assigned to one category.
type Count struct {
	Category string  `json:"category"`
	Topics   int     `json:"topics"`
	Percent  float64 `json:"percent"`
}

// Distribution categorizes topics and returns the mapping together with
// per-category counts, largest first and ties broken by name.
func Distribution(topics []string) (map[string]string, []Count) {
	mapping := make(map[string]string, len(topics))
	counts := make(map[string]int)
	for _, t := range topics {
		c := Categorize(t)
		mapping[t] = c
		counts[c]++
	}

	out := make([]Count, 0, len(counts))
	for c, n := range counts {
		out = append(out, Count{
			Category: c,
			Topics:   n,
			Percent:  float64(n) / float64(len(topics)) * 100,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Topics != out[j].Topics {
			return out[i].Topics > out[j].Topics
		}
		return out[i].Category < out[j].Category
	})
	return mapping, out
}
