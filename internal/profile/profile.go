package profile

const (
	InfluencerIDField       = "ID"
	InfluencerLocationField = "Location"
)

type UserType string

const (
	TypeInfluencer UserType = "influencer"
	TypeBusiness   UserType = "business"
)

type Influencer struct {
	ID           string   `mapstructure:"id" json:"id,omitempty"`
	Name         string   `mapstructure:"name" json:"name,omitempty"`
	Category     string   `mapstructure:"category" json:"category,omitempty"`
	Bio          string   `mapstructure:"bio" json:"bio,omitempty"`
	Tags         []string `mapstructure:"tags" json:"tags,omitempty"`
	Location     string   `mapstructure:"location" json:"location,omitempty"`
	Followers    int      `mapstructure:"followers" json:"followers"`
	Engagement   float64  `mapstructure:"engagement" json:"engagement"`
	Languages    []string `mapstructure:"languages" json:"languages,omitempty"`
	ContentTypes []string `mapstructure:"contentTypes" json:"contentTypes,omitempty"`
	Pricing      Pricing  `mapstructure:"pricing" json:"pricing"`
}

type Pricing struct {
	SponsoredPost    float64 `mapstructure:"sponsoredPost" json:"sponsoredPost"`
	StoryPost        float64 `mapstructure:"storyPost" json:"storyPost,omitempty"`
	ReelPost         float64 `mapstructure:"reelPost" json:"reelPost"`
	LongTermContract float64 `mapstructure:"longTermContract" json:"longTermContract,omitempty"`
}

// AveragePostPrice is the mean of the sponsored post and reel prices.
func (p Pricing) AveragePostPrice() float64 {
	return (p.SponsoredPost + p.ReelPost) / 2
}

type Business struct {
	ID             string      `mapstructure:"id" json:"id,omitempty"`
	Name           string      `mapstructure:"name" json:"name,omitempty"`
	Category       string      `mapstructure:"category" json:"category,omitempty"`
	Description    string      `mapstructure:"description" json:"description,omitempty"`
	Industry       string      `mapstructure:"industry" json:"industry,omitempty"`
	Location       string      `mapstructure:"location" json:"location,omitempty"`
	TargetAudience []string    `mapstructure:"targetAudience" json:"targetAudience,omitempty"`
	Preferences    Preferences `mapstructure:"preferences" json:"preferences"`
	Budget         Budget      `mapstructure:"budget" json:"budget"`
}

type Preferences struct {
	InfluencerSize string   `mapstructure:"influencerSize" json:"influencerSize,omitempty"`
	EngagementRate float64  `mapstructure:"engagementRate" json:"engagementRate"`
	ContentStyle   []string `mapstructure:"contentStyle" json:"contentStyle,omitempty"`
}

type Budget struct {
	Min       float64 `mapstructure:"min" json:"min"`
	Max       float64 `mapstructure:"max" json:"max"`
	Preferred float64 `mapstructure:"preferred" json:"preferred,omitempty"`
}

// Includes reports whether the amount lies within the budget bounds inclusive.
func (b Budget) Includes(amount float64) bool {
	return b.Min <= amount && amount <= b.Max
}

// User is a marketplace participant as seen by messaging.
type User struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     UserType `json:"type"`
	Location string   `json:"location,omitempty"`
	Category string   `json:"category,omitempty"`
}

func (i *Influencer) User() User {
	return User{ID: i.ID, Name: i.Name, Type: TypeInfluencer, Location: i.Location, Category: i.Category}
}

func (b *Business) User() User {
	return User{ID: b.ID, Name: b.Name, Type: TypeBusiness, Location: b.Location, Category: b.Category}
}

func (i *Influencer) GetStringField(name string) string {
	switch name {
	case InfluencerIDField:
		return i.ID
	case InfluencerLocationField:
		return i.Location
	default:
		return ""
	}
}
