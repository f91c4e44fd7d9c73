// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package assistant is the community-management helper behind `postdeck ask`.

It does not call a model. Replies come from an ordered rule table: the
first rule whose keyword appears in the lower-cased prompt answers, and a
catch-all rule answers everything else. Use [DefaultRules] for the stock
French table or build your own.
*/
package assistant

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rule maps a keyword set to a reply. A rule without keywords matches everything.
type Rule struct {
	Name     string
	Keywords []string
	Reply    func(prompt string) string
}

// Matches reports whether folded (an already lower-cased prompt) contains any keyword.
func (r Rule) Matches(folded string) bool {
	if len(r.Keywords) == 0 {
		return true
	}
	for _, keyword := range r.Keywords {
		if strings.Contains(folded, keyword) {
			return true
		}
	}
	return false
}

// Fold lower-cases a prompt with French casing rules.
func Fold(prompt string) string {
	// Casers keep state and are not shared between goroutines.
	return cases.Lower(language.French).String(prompt)
}

// Match returns the first rule that matches prompt, in table order.
func Match(rules []Rule, prompt string) (Rule, bool) {
	folded := Fold(prompt)
	for _, rule := range rules {
		if rule.Matches(folded) {
			return rule, true
		}
	}
	return Rule{}, false
}

func fixed(reply string) func(string) string {
	return func(string) string { return reply }
}

// DefaultRules is the stock French table, highest priority first.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "greeting",
			Keywords: []string{"bonjour", "salut"},
			Reply:    fixed("Bonjour ! Comment puis-je vous aider avec votre stratégie de community management aujourd'hui ?"),
		},
		{
			Name:     "ideas",
			Keywords: []string{"idée", "post", "contenu"},
			Reply: fixed(`Voici quelques idées de contenu pour dynamiser votre présence sur les réseaux sociaux :

1. Partagez les coulisses de votre entreprise pour humaniser votre marque
2. Créez un sondage pour engager votre communauté et recueillir des insights
3. Publiez un tutoriel ou un guide pratique lié à votre secteur d'activité
4. Mettez en avant un témoignage client pour renforcer votre crédibilité`),
		},
		{
			Name:     "hashtags",
			Keywords: []string{"hashtag"},
			Reply: fixed(`Voici quelques hashtags populaires qui pourraient convenir à votre secteur :

#CommunityManagement #StratégieDigitale #MarketingDeContenu #EngagementCommunautaire #SocialMediaTips`),
		},
		{
			Name:     "analytics",
			Keywords: []string{"performance", "statistique", "analytics"},
			Reply: fixed(`Basé sur vos dernières publications, voici quelques insights :

- Vos posts avec images obtiennent 43% plus d'engagement
- Le meilleur moment pour publier semble être le jeudi entre 18h et 20h
- Les contenus sur le thème de l'innovation génèrent le plus de partages
- Essayez d'utiliser plus de questions dans vos légendes pour augmenter les commentaires`),
		},
		{
			Name:     "planning",
			Keywords: []string{"calendrier", "planification", "planning"},
			Reply: fixed(`Pour optimiser votre calendrier de publication, je vous suggère :

- Maintenir une fréquence de 3-4 posts par semaine pour une présence régulière
- Alterner entre contenus promotionnels (20%) et contenus à valeur ajoutée (80%)
- Planifier vos publications importantes 2 semaines à l'avance
- Réserver les lundis matin pour l'analyse des performances de la semaine précédente`),
		},
		{
			Name: "fallback",
			Reply: func(prompt string) string {
				return fmt.Sprintf(`Je comprends votre question sur "%s". Voici ce que je peux vous proposer :

1. Générer du contenu adapté à votre audience
2. Analyser les tendances de votre secteur
3. Optimiser votre stratégie de publication
4. Suggérer des améliorations pour vos posts existants

Pourriez-vous me donner plus de détails sur ce que vous recherchez exactement ?`, prompt)
			},
		},
	}
}

// Suggestions are the quick prompts offered when the conversation is empty.
var Suggestions = []string{
	"Génère une idée de post pour Instagram",
	"Suggère des hashtags pour mon secteur",
	"Quel est le meilleur moment pour publier ?",
	"Crée une description pour ma photo",
}
