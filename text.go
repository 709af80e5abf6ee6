package main

import "github.com/Zachkp/zach-dev/internal/content"

var (
	AboutMe = `I love building software that’s both useful and fun, and I’m always curious about how things work behind the scenes.
Most of my projects start with a simple idea and turn into a chance to learn something new, whether it’s exploring a
different language, experimenting with tools, or solving tricky problems.
When I’m not coding, you’ll usually find me training Muay Thai, shooting pool with friends,
or chasing down a new challenge outside the screen.`

	ProjectOne = `A terminal-based email client built in Go with fuzzyfinder capabilities
using the Charmbracelet TUI framework and go-imap.`

	ProjectTwo = `A terminal-based music streaming application built in Go with an elegant TUI
interface, leveraging yt-dlp and mpv for seamless YouTube Music playback directly from the command line.`

	ProjectThree = `A machine learning-powered web application that uses TF-IDF vectorization and cosine
similarity to recommend games based on content analysis, featuring interactive data visualizations and
real-time filtering by user reviews and ratings.`

	ProjectFour = `A modern, responsive portfolio website built with Go, Gin framework, and HTMX for
dynamic interactions, styled with Tailwind CSS and enhanced with Alpine.js for seamless client-side
interactivity without traditional JavaScript frameworks.`
)

// Projects is the static project list served at /api/projects.
var Projects = []content.Project{
	{
		Item: content.Item{
			ID: "terminal-mail", Title: "Terminal Mail", Body: ProjectOne,
			PublishedAt: "2025-03-01", Thumbnail: "/images/projects/mail.png",
			Tags: []string{"go", "tui"}, SourceURL: "https://github.com/Zachkp",
		},
		Stack: []string{"Go", "Bubble Tea", "go-imap"},
	},
	{
		Item: content.Item{
			ID: "terminal-music", Title: "Terminal Music", Body: ProjectTwo,
			PublishedAt: "2025-01-15", Thumbnail: "/images/projects/music.png",
			Tags: []string{"go", "tui"}, SourceURL: "https://github.com/Zachkp",
		},
		Stack: []string{"Go", "Bubble Tea", "yt-dlp", "mpv"},
	},
	{
		Item: content.Item{
			ID: "game-recommender", Title: "Game Recommender", Body: ProjectThree,
			PublishedAt: "2023-05-01", Thumbnail: content.FallbackThumbnail,
			Tags: []string{"python", "ml"}, SourceURL: "https://github.com/Zachkp",
		},
		Stack: []string{"Python", "scikit-learn", "Dash"},
	},
	{
		Item: content.Item{
			ID: "portfolio", Title: "Portfolio", Body: ProjectFour,
			PublishedAt: "2025-06-01", Thumbnail: "/images/projects/portfolio.png",
			Tags: []string{"go", "web"}, SourceURL: "https://github.com/Zachkp/zach-dev",
		},
		Stack: []string{"Go", "Gin", "HTMX", "Tailwind CSS", "Alpine.js"},
	},
}

// Entry is one job or qualification on the about page.
type Entry struct {
	Title        string   `json:"title"`
	Organization string   `json:"organization"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	LogoPath     string   `json:"logoPath"`
	BulletPoints []string `json:"bulletPoints"`
}

var Experience = []Entry{
	{
		Title:        "Presentation Expert",
		Organization: "Target",
		StartDate:    "Aug 2023",
		EndDate:      "Present",
		LogoPath:     "/images/TargetLogo.jpg",
		BulletPoints: []string{
			"Executed over 300 merchandising transitions on tight timelines by organizing team workflows and adapting quickly to changing priorities",
			"Boosted operational efficiency by managing backroom inventory processes and streamlining communication between floor and logistics teams",
			"Enhanced pricing and signage accuracy across departments by standardizing daily checks and collaborating cross-functionally",
		},
	},
	{
		Title:        "Manager",
		Organization: "Jasons Catered Events",
		StartDate:    "Aug 2016",
		EndDate:      "Present",
		LogoPath:     "/images/jasonsCateringLogo.png",
		BulletPoints: []string{
			"Improved client satisfaction by coordinating customized menus and ensuring all dietary requirements were accurately met",
			"Supported event technology by troubleshooting AV equipment and managing digital order tracking systems, reducing technical delays and improving communication",
			"Maintained supply inventory and coordinated timely delivery between venues, optimizing resource allocation and minimizing downtime.",
		},
	},
}

var Education = []Entry{
	{
		Title:        "Bachelor of Computer Science",
		Organization: "Western Governors University",
		StartDate:    "Sept 2019",
		EndDate:      "May 2023",
		LogoPath:     "/images/WGU-logo.png",
		BulletPoints: []string{
			"Graduated Magna Cum Laude with 3.8 GPA",
			"Relevant coursework: Data Structures, Algorithms, Web Development",
			"Senior project: Machine Learning recommendation system",
		},
	},
	{
		Title:        "Project Management",
		Organization: "Comptia",
		StartDate:    "July 2022",
		EndDate:      "Present",
		LogoPath:     "/images/comptiaCert.png",
		BulletPoints: []string{
			"Certified in agile project management methodology",
			"Verification code: SRRRPGBSWBRQCCDJ",
		},
	},
}
