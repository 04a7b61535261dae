package api

// Timestamps are kept as the strings the backend emits
// (ISO-8601 local date-time without zone).

// Status is the enabled/disabled flag shared by most catalog entities.
type Status string

const (
	StatusEnabled  Status = "ENABLED"
	StatusDisabled Status = "DISABLED"
)

// PoetryStatus is the publication state of a poem.
type PoetryStatus string

const (
	PoetryDraft     PoetryStatus = "DRAFT"
	PoetryPublished PoetryStatus = "PUBLISHED"
	PoetryOffline   PoetryStatus = "OFFLINE"
)

// ContentFormat tells whether a poem's content is the original text or a
// modern rendering.
type ContentFormat string

const (
	FormatOriginal ContentFormat = "ORIGINAL"
	FormatModern   ContentFormat = "MODERN"
)

// Difficulty grades how hard a poem is to read.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Gender of a system user.
type Gender string

const (
	GenderUnknown Gender = "UNKNOWN"
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
)

// ConfigType is the declared type of a system config value.
type ConfigType string

const (
	ConfigString  ConfigType = "STRING"
	ConfigNumber  ConfigType = "NUMBER"
	ConfigBoolean ConfigType = "BOOLEAN"
	ConfigJSON    ConfigType = "JSON"
)

// Base carries the audit columns every catalog entity has.
type Base struct {
	ID          int64  `json:"id,omitempty" yaml:"id,omitempty"`
	CreatedBy   int64  `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`
	CreatedTime string `json:"createdTime,omitempty" yaml:"createdTime,omitempty"`
	UpdatedBy   int64  `json:"updatedBy,omitempty" yaml:"updatedBy,omitempty"`
	UpdatedTime string `json:"updatedTime,omitempty" yaml:"updatedTime,omitempty"`
	IsDeleted   int    `json:"isDeleted,omitempty" yaml:"isDeleted,omitempty"`
}

// Identity returns the entity id.
func (b Base) Identity() int64 {
	return b.ID
}

// Poetry is a single poem.
type Poetry struct {
	Base          `yaml:",inline"`
	Title         string        `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle      string        `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	PoetID        int64         `json:"poetId,omitempty" yaml:"poetId,omitempty"`
	DynastyID     int64         `json:"dynastyId,omitempty" yaml:"dynastyId,omitempty"`
	CategoryID    int64         `json:"categoryId,omitempty" yaml:"categoryId,omitempty"`
	Content       string        `json:"content,omitempty" yaml:"content,omitempty"`
	ContentFormat ContentFormat `json:"contentFormat,omitempty" yaml:"contentFormat,omitempty"`
	Translation   string        `json:"translation,omitempty" yaml:"translation,omitempty"`
	Annotation    string        `json:"annotation,omitempty" yaml:"annotation,omitempty"`
	Appreciation  string        `json:"appreciation,omitempty" yaml:"appreciation,omitempty"`
	Background    string        `json:"background,omitempty" yaml:"background,omitempty"`
	Tags          string        `json:"tags,omitempty" yaml:"tags,omitempty"`
	Difficulty    Difficulty    `json:"difficultyLevel,omitempty" yaml:"difficultyLevel,omitempty"`
	WordCount     int           `json:"wordCount,omitempty" yaml:"wordCount,omitempty"`
	VerseCount    int           `json:"verseCount,omitempty" yaml:"verseCount,omitempty"`
	Rhythm        string        `json:"rhythm,omitempty" yaml:"rhythm,omitempty"`
	RhymeScheme   string        `json:"rhymeScheme,omitempty" yaml:"rhymeScheme,omitempty"`
	ViewCount     int64         `json:"viewCount,omitempty" yaml:"viewCount,omitempty"`
	LikeCount     int64         `json:"likeCount,omitempty" yaml:"likeCount,omitempty"`
	CollectCount  int64         `json:"collectCount,omitempty" yaml:"collectCount,omitempty"`
	ShareCount    int64         `json:"shareCount,omitempty" yaml:"shareCount,omitempty"`
	CommentCount  int64         `json:"commentCount,omitempty" yaml:"commentCount,omitempty"`
	IsFeatured    int           `json:"isFeatured,omitempty" yaml:"isFeatured,omitempty"`
	IsHot         int           `json:"isHot,omitempty" yaml:"isHot,omitempty"`
	Source        string        `json:"source,omitempty" yaml:"source,omitempty"`
	CopyrightInfo string        `json:"copyrightInfo,omitempty" yaml:"copyrightInfo,omitempty"`
	Status        PoetryStatus  `json:"status,omitempty" yaml:"status,omitempty"`
	PublishTime   string        `json:"publishTime,omitempty" yaml:"publishTime,omitempty"`
}

// Poet is an author.
type Poet struct {
	Base                `yaml:",inline"`
	Name                string `json:"poetName,omitempty" yaml:"poetName,omitempty"`
	Alias               string `json:"poetAlias,omitempty" yaml:"poetAlias,omitempty"`
	DynastyID           int64  `json:"dynastyId,omitempty" yaml:"dynastyId,omitempty"`
	BirthYear           int    `json:"birthYear,omitempty" yaml:"birthYear,omitempty"`
	DeathYear           int    `json:"deathYear,omitempty" yaml:"deathYear,omitempty"`
	Birthplace          string `json:"birthplace,omitempty" yaml:"birthplace,omitempty"`
	Biography           string `json:"biography,omitempty" yaml:"biography,omitempty"`
	Achievements        string `json:"achievements,omitempty" yaml:"achievements,omitempty"`
	RepresentativeWorks string `json:"representativeWorks,omitempty" yaml:"representativeWorks,omitempty"`
	Avatar              string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	ViewCount           int64  `json:"viewCount,omitempty" yaml:"viewCount,omitempty"`
	LikeCount           int64  `json:"likeCount,omitempty" yaml:"likeCount,omitempty"`
	Status              Status `json:"status,omitempty" yaml:"status,omitempty"`
}

// Dynasty is a historical period poems and poets belong to.
type Dynasty struct {
	Base        `yaml:",inline"`
	Name        string `json:"dynastyName,omitempty" yaml:"dynastyName,omitempty"`
	Code        string `json:"dynastyCode,omitempty" yaml:"dynastyCode,omitempty"`
	StartYear   int    `json:"startYear,omitempty" yaml:"startYear,omitempty"`
	EndYear     int    `json:"endYear,omitempty" yaml:"endYear,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	SortOrder   int    `json:"sortOrder,omitempty" yaml:"sortOrder,omitempty"`
	Status      Status `json:"status,omitempty" yaml:"status,omitempty"`
}

// Category is a node in the poem category tree.
type Category struct {
	Base        `yaml:",inline"`
	Name        string `json:"categoryName,omitempty" yaml:"categoryName,omitempty"`
	Code        string `json:"categoryCode,omitempty" yaml:"categoryCode,omitempty"`
	ParentID    int64  `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Level       int    `json:"level,omitempty" yaml:"level,omitempty"`
	SortOrder   int    `json:"sortOrder,omitempty" yaml:"sortOrder,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	CoverImage  string `json:"coverImage,omitempty" yaml:"coverImage,omitempty"`
	Status      Status `json:"status,omitempty" yaml:"status,omitempty"`
}

// User is a system account.
type User struct {
	Base          `yaml:",inline"`
	Username      string `json:"username,omitempty" yaml:"username,omitempty"`
	Nickname      string `json:"nickname,omitempty" yaml:"nickname,omitempty"`
	Email         string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone         string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Password      string `json:"password,omitempty" yaml:"password,omitempty"`
	Avatar        string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Gender        Gender `json:"gender,omitempty" yaml:"gender,omitempty"`
	Birthday      string `json:"birthday,omitempty" yaml:"birthday,omitempty"`
	Signature     string `json:"signature,omitempty" yaml:"signature,omitempty"`
	Status        Status `json:"status,omitempty" yaml:"status,omitempty"`
	LastLoginTime string `json:"lastLoginTime,omitempty" yaml:"lastLoginTime,omitempty"`
	LastLoginIP   string `json:"lastLoginIp,omitempty" yaml:"lastLoginIp,omitempty"`
}

// Role is a named set of permissions.
type Role struct {
	Base        `yaml:",inline"`
	Name        string `json:"roleName,omitempty" yaml:"roleName,omitempty"`
	Code        string `json:"roleCode,omitempty" yaml:"roleCode,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	SortOrder   int    `json:"sortOrder,omitempty" yaml:"sortOrder,omitempty"`
	Status      Status `json:"status,omitempty" yaml:"status,omitempty"`
}

// SysConfig is one runtime setting of the backend.
type SysConfig struct {
	Base        `yaml:",inline"`
	Key         string     `json:"configKey,omitempty" yaml:"configKey,omitempty"`
	Value       string     `json:"configValue,omitempty" yaml:"configValue,omitempty"`
	Name        string     `json:"configName,omitempty" yaml:"configName,omitempty"`
	Type        ConfigType `json:"configType,omitempty" yaml:"configType,omitempty"`
	Group       string     `json:"configGroup,omitempty" yaml:"configGroup,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	IsSystem    int        `json:"isSystem,omitempty" yaml:"isSystem,omitempty"`
	SortOrder   int        `json:"sortOrder,omitempty" yaml:"sortOrder,omitempty"`
	Status      Status     `json:"status,omitempty" yaml:"status,omitempty"`
}

// SysLog is an audit log line. Logs are append-only and carry no audit
// columns of their own.
type SysLog struct {
	ID          int64  `json:"id,omitempty" yaml:"id,omitempty"`
	UserID      int64  `json:"userId,omitempty" yaml:"userId,omitempty"`
	Username    string `json:"username,omitempty" yaml:"username,omitempty"`
	Operation   string `json:"operation,omitempty" yaml:"operation,omitempty"`
	Method      string `json:"method,omitempty" yaml:"method,omitempty"`
	Params      string `json:"params,omitempty" yaml:"params,omitempty"`
	DurationMS  int64  `json:"time,omitempty" yaml:"time,omitempty"`
	IP          string `json:"ip,omitempty" yaml:"ip,omitempty"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty"`
	UserAgent   string `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	Status      int    `json:"status,omitempty" yaml:"status,omitempty"`
	ErrorMsg    string `json:"errorMsg,omitempty" yaml:"errorMsg,omitempty"`
	CreatedTime string `json:"createdTime,omitempty" yaml:"createdTime,omitempty"`
}

// Identity returns the log id.
func (l SysLog) Identity() int64 {
	return l.ID
}
